package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
)

const corpus = `{"id": 1, "title": "Cats", "url": "http://cats", "text": "The cat and the dog"}
{"id": 2, "title": "Dogs", "url": "http://dogs", "text": "Dogs chasing birds"}
`

func TestEngineBuild(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	e, err := NewEngine(
		config.IndexConfig{Scheme: "ltc", Payloads: true},
		config.TokensConfig{Lowercase: true, RemoveStopwords: true, Stem: true},
		m,
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := e.Index(); !errors.Is(err, apperrors.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady before build, got %v", err)
	}
	if err := e.Ready(context.Background()); err == nil {
		t.Fatal("engine must not be ready before build")
	}

	idx, err := e.Build(context.Background(), ingestion.NewWebReader(strings.NewReader(corpus)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if idx.DocCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", idx.DocCount())
	}
	if _, ok := idx.Stats("the"); ok {
		t.Fatal("stop words must not be indexed")
	}
	stats, ok := idx.Stats("dog")
	if !ok || stats.DocumentFrequency != 2 {
		t.Fatalf("expected stemmed dog in both documents, got %+v", stats)
	}
	if got := e.NormalizeTerm("Birds"); got != "bird" {
		t.Fatalf("NormalizeTerm(Birds) = %q", got)
	}
	if got := e.NormalizeTerm("THE"); got != "" {
		t.Fatalf("stop word normalized to %q", got)
	}
	if doc, ok := e.Documents().Get(2); !ok || doc.Title != "Dogs" {
		t.Fatalf("payload missing: %+v", doc)
	}
	if e.Ready(context.Background()) != nil {
		t.Fatal("engine must be ready after build")
	}
	if _, err := e.Build(context.Background(), ingestion.NewWebReader(strings.NewReader(corpus))); err == nil {
		t.Fatal("second build must fail")
	}
}

func TestEngineRejectsBadScheme(t *testing.T) {
	_, err := NewEngine(config.IndexConfig{Scheme: "xyz"}, config.TokensConfig{}, nil)
	if !errors.Is(err, apperrors.ErrInvalidScheme) {
		t.Fatalf("expected ErrInvalidScheme, got %v", err)
	}
}

func TestEngineTokenizerChoice(t *testing.T) {
	if _, err := NewEngine(config.IndexConfig{Scheme: "nnn"}, config.TokensConfig{Tokenizer: "ngram"}, nil); err == nil {
		t.Fatal("expected an error for an unknown tokenizer")
	}
	tests := []struct {
		tokenizer string
		want      []string
	}{
		{"simple", []string{"dog", "s", "bowl"}},
		{"whitespace", []string{"dog's", "bowl"}},
	}
	for _, tt := range tests {
		e, err := NewEngine(config.IndexConfig{Scheme: "nnn"}, config.TokensConfig{Tokenizer: tt.tokenizer, Lowercase: true}, nil)
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}
		if got := e.Analyze("Dog's BOWL"); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: Analyze() = %q, want %q", tt.tokenizer, got, tt.want)
		}
	}
}

func TestEngineBuildFailureLeavesNoIndex(t *testing.T) {
	e, err := NewEngine(config.IndexConfig{Scheme: "nnn"}, config.TokensConfig{}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	dup := `{"id": 1, "text": "a"}
{"id": 1, "text": "b"}
`
	_, err = e.Build(context.Background(), ingestion.NewWebReader(strings.NewReader(dup)))
	if !errors.Is(err, apperrors.ErrDuplicateDocument) {
		t.Fatalf("expected ErrDuplicateDocument, got %v", err)
	}
	if _, err := e.Index(); !errors.Is(err, apperrors.ErrIndexNotReady) {
		t.Fatalf("failed build must not publish an index, got %v", err)
	}
	if e.Documents() != nil {
		t.Fatal("payloads disabled, expected nil store")
	}
}

func TestEngineBuildFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := os.WriteFile(path, []byte(corpus), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	cfg := config.IndexConfig{Scheme: "lnc", CorpusPath: path, Format: "jsonl"}
	e, err := NewEngine(cfg, config.TokensConfig{Lowercase: true}, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	idx, err := e.BuildFrom(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build from: %v", err)
	}
	if idx.DocCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", idx.DocCount())
	}

	missing := config.IndexConfig{Scheme: "lnc", CorpusPath: filepath.Join(t.TempDir(), "none"), Format: "tdt"}
	e, _ = NewEngine(missing, config.TokensConfig{}, nil)
	if _, err := e.BuildFrom(context.Background(), missing, nil); err == nil {
		t.Fatal("expected error for a missing corpus file")
	}
	pg := config.IndexConfig{Scheme: "lnc", Format: "postgres"}
	if _, err := e.BuildFrom(context.Background(), pg, nil); err == nil {
		t.Fatal("expected error for postgres without a database")
	}
}
