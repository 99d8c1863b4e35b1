package executor

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
)

const pets = `{"id": 1, "text": "Cat dog"}
{"id": 2, "text": "dog dog bird"}
`

func newEngine(t *testing.T, scheme, corpus string) *indexer.Engine {
	t.Helper()
	e, err := indexer.NewEngine(config.IndexConfig{Scheme: scheme}, config.TokensConfig{Lowercase: true}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.Build(context.Background(), ingestion.NewWebReader(strings.NewReader(corpus))); err != nil {
		t.Fatalf("build: %v", err)
	}
	return e
}

func TestBoolean(t *testing.T) {
	exec := New(newEngine(t, "ltc", pets), nil)
	ctx := context.Background()

	res, err := exec.Boolean(ctx, "cat AND dog")
	if err != nil {
		t.Fatalf("boolean: %v", err)
	}
	if !reflect.DeepEqual(res.IDs(), []int{1}) {
		t.Fatalf("cat AND dog = %v", res.IDs())
	}
	res, err = exec.Boolean(ctx, "!CAT")
	if err != nil {
		t.Fatalf("boolean: %v", err)
	}
	if !reflect.DeepEqual(res.IDs(), []int{2}) {
		t.Fatalf("!CAT = %v, query words go through the corpus pipeline", res.IDs())
	}
	if _, err := exec.Boolean(ctx, "cat AND"); !errors.Is(err, apperrors.ErrQuerySyntax) {
		t.Fatalf("expected ErrQuerySyntax, got %v", err)
	}
}

func TestRanked(t *testing.T) {
	exec := New(newEngine(t, "lnc", pets), nil)
	res, err := exec.Ranked(context.Background(), "Dog", 0)
	if err != nil {
		t.Fatalf("ranked: %v", err)
	}
	if !reflect.DeepEqual(res.IDs(), []int{2, 1}) {
		t.Fatalf("dog = %v, want [2 1]", res.IDs())
	}
	top, err := exec.RankedTokens(context.Background(), []string{"dog"}, 1)
	if err != nil {
		t.Fatalf("ranked tokens: %v", err)
	}
	if !reflect.DeepEqual(top.IDs(), []int{2}) {
		t.Fatalf("top-1 = %v", top.IDs())
	}
}

func TestExecuteDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	exec := New(newEngine(t, "lnc", pets), metrics.NewWithRegistry(reg))
	ctx := context.Background()

	tests := []struct {
		raw   string
		mode  Mode
		want  Mode
		ids   []int
		total int
	}{
		{"cat AND dog", ModeAuto, ModeBoolean, []int{1}, 1},
		{"!bird", ModeAuto, ModeBoolean, []int{1}, 1},
		{"dog", ModeAuto, ModeRanked, []int{2, 1}, 2},
		{"cat OR bird", ModeRanked, ModeRanked, []int{1, 2}, 2},
		{"dog bird", ModeBoolean, ModeBoolean, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res, err := exec.Execute(ctx, tt.raw, tt.mode, 0)
			if tt.ids == nil {
				if !errors.Is(err, apperrors.ErrQuerySyntax) {
					t.Fatalf("expected syntax error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if res.Mode != tt.want || res.TotalHits != tt.total {
				t.Fatalf("mode %s total %d, want %s %d", res.Mode, res.TotalHits, tt.want, tt.total)
			}
			ids := make([]int, len(res.Results))
			for i, d := range res.Results {
				ids[i] = d.DocID
			}
			if !reflect.DeepEqual(ids, tt.ids) {
				t.Fatalf("ids %v, want %v", ids, tt.ids)
			}
		})
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "search_queries_total" {
			found = len(mf.GetMetric()) > 0
		}
	}
	if !found {
		t.Fatal("search_queries_total not recorded")
	}
}

func TestExecuteLimitKeepsTotal(t *testing.T) {
	exec := New(newEngine(t, "nnn", pets), nil)
	res, err := exec.Execute(context.Background(), "!zebra", ModeAuto, 1)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.TotalHits != 2 || len(res.Results) != 1 || res.Results[0].DocID != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = exec.Execute(context.Background(), "dog cat", ModeRanked, 1)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.TotalHits != 2 || len(res.Results) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(res.Terms, []string{"dog", "cat"}) || res.TermStats["dog"] != 2 || res.TermStats["cat"] != 1 {
		t.Fatalf("terms %v stats %v", res.Terms, res.TermStats)
	}
}

func TestExecuteEmptyRankedQuery(t *testing.T) {
	exec := New(newEngine(t, "ltc", pets), nil)
	res, err := exec.Execute(context.Background(), "   ", ModeAuto, 10)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Mode != ModeRanked || res.TotalHits != 0 || len(res.Results) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecuteNotReady(t *testing.T) {
	e, err := indexer.NewEngine(config.IndexConfig{Scheme: "ltc"}, config.TokensConfig{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := New(e, nil).Execute(context.Background(), "dog", ModeAuto, 10); !errors.Is(err, apperrors.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestExecuteCancelled(t *testing.T) {
	exec := New(newEngine(t, "ltc", pets), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exec.Execute(ctx, "dog", ModeRanked, 10); !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAuto, "AUTO": ModeAuto, "boolean": ModeBoolean, " ranked ": ModeRanked} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("fuzzy"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
