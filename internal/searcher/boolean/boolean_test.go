package boolean

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/weighting"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/result"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
)

func build(t testing.TB, texts map[int]string) *index.Index {
	t.Helper()
	ids := make([]int, 0, len(texts))
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	docs := make([]index.Document, len(ids))
	for i, id := range ids {
		docs[i] = index.Document{ID: id, Tokens: strings.Fields(texts[id])}
	}
	idx, err := index.Build(context.Background(), index.NewSliceStream(docs...), weighting.Default)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return idx
}

func TestSearchPets(t *testing.T) {
	idx := build(t, map[int]string{1: "cat dog", 2: "dog dog bird"})
	ev := New(idx, nil)

	tests := []struct {
		expr string
		want []int
	}{
		{"cat AND dog", []int{1}},
		{"!cat", []int{2}},
		{"cat OR bird", []int{1, 2}},
		{"!dog", []int{}},
		{"!!cat", []int{1}},
		{"zebra", []int{}},
		{"!zebra", []int{1, 2}},
		{"cat AND !bird OR bird AND !cat", []int{1, 2}},
		{"bird OR cat AND zebra", []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res, err := ev.Search(tt.expr)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if got := res.IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for _, s := range res.Scores() {
				if s != result.BooleanScore {
					t.Fatalf("boolean match scored %v", s)
				}
			}
		})
	}
}

func TestSearchSyntaxError(t *testing.T) {
	idx := build(t, map[int]string{0: "a"})
	for _, expr := range []string{"a AND", "OR a", "a b", "!", ""} {
		if _, err := New(idx, nil).Search(expr); !errors.Is(err, apperrors.ErrQuerySyntax) {
			t.Errorf("%q: expected ErrQuerySyntax, got %v", expr, err)
		}
	}
}

func TestSetAlgebra(t *testing.T) {
	texts := make(map[int]string)
	for i := 0; i < 60; i++ {
		var words []string
		if i%2 == 0 {
			words = append(words, "two")
		}
		if i%3 == 0 {
			words = append(words, "three")
		}
		if i%5 == 0 {
			words = append(words, "five")
		}
		words = append(words, fmt.Sprintf("n%d", i))
		texts[i*3] = strings.Join(words, " ")
	}
	idx := build(t, texts)
	ev := New(idx, nil)

	docsOf := func(term string) map[int]bool {
		set := map[int]bool{}
		for _, p := range idx.Postings(term) {
			set[p.DocID] = true
		}
		return set
	}
	ids := func(expr string) map[int]bool {
		res, err := ev.Search(expr)
		if err != nil {
			t.Fatalf("%q: %v", expr, err)
		}
		got := res.IDs()
		if !sort.IntsAreSorted(got) {
			t.Fatalf("%q: ids not ascending: %v", expr, got)
		}
		set := map[int]bool{}
		for _, id := range got {
			set[id] = true
		}
		return set
	}

	terms := []string{"two", "three", "five", "n4", "missing"}
	for _, a := range terms {
		da := docsOf(a)
		not := ids("!" + a)
		for id := range texts {
			if not[id] == da[id] {
				t.Fatalf("!%s: doc %d complement mismatch", a, id)
			}
		}
		for _, b := range terms {
			db := docsOf(b)
			and := ids(a + " AND " + b)
			or := ids(a + " OR " + b)
			for id := range texts {
				if and[id] != (da[id] && db[id]) {
					t.Fatalf("%s AND %s: doc %d", a, b, id)
				}
				if or[id] != (da[id] || db[id]) {
					t.Fatalf("%s OR %s: doc %d", a, b, id)
				}
			}
		}
	}
}

func TestSearchDoesNotMutateIndex(t *testing.T) {
	idx := build(t, map[int]string{0: "a b", 1: "b", 2: "c"})
	before := idx.Docs("b").ToArray()
	universe := idx.Universe().GetCardinality()
	ev := New(idx, nil)
	for _, expr := range []string{"b AND a", "b OR c", "!b", "b AND !a OR c"} {
		if _, err := ev.Search(expr); err != nil {
			t.Fatalf("%q: %v", expr, err)
		}
	}
	if got := idx.Docs("b").ToArray(); !reflect.DeepEqual(got, before) {
		t.Fatalf("posting set of b changed: %v -> %v", before, got)
	}
	if idx.Universe().GetCardinality() != universe {
		t.Fatal("universe changed")
	}
}

func TestNormalizer(t *testing.T) {
	idx := build(t, map[int]string{0: "cat", 1: "dog"})
	ev := New(idx, func(word string) string {
		if word == "THE" {
			return ""
		}
		return strings.ToLower(word)
	})
	res, err := ev.Search("CAT OR Dog")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(res.IDs(), []int{0, 1}) {
		t.Fatalf("got %v", res.IDs())
	}
	res, err = ev.Search("!THE")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(res.IDs(), []int{0, 1}) {
		t.Fatalf("a word normalized away matches nothing, its complement is everything; got %v", res.IDs())
	}
}

// Run with -race: one built index serves boolean and ranked queries from
// many goroutines without locking.
func TestConcurrentReads(t *testing.T) {
	idx := build(t, map[int]string{1: "cat dog", 2: "dog dog bird", 3: "fish cat fish"})
	ev := New(idx, nil)

	exprs := []string{"!cat OR bird AND dog", "cat AND dog", "!fish AND !bird", "cat OR fish"}
	ranked := [][]string{{"cat", "bird"}, {"dog"}, {"fish", "cat", "zebra"}}

	wantBool := make([]result.QueryResult, len(exprs))
	for i, expr := range exprs {
		res, err := ev.Search(expr)
		if err != nil {
			t.Fatalf("search %q: %v", expr, err)
		}
		wantBool[i] = res
	}
	wantRanked := make([]result.QueryResult, len(ranked))
	for i, q := range ranked {
		wantRanked[i] = ranker.Rank(idx, q, 2)
	}

	const workers = 32
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				j := (w + i) % len(exprs)
				res, err := ev.Search(exprs[j])
				if err != nil {
					errs <- err
					return
				}
				if !reflect.DeepEqual(res.IDs(), wantBool[j].IDs()) {
					errs <- fmt.Errorf("%q: got %v, want %v", exprs[j], res.IDs(), wantBool[j].IDs())
					return
				}
				k := (w + i) % len(ranked)
				got := ranker.Rank(idx, ranked[k], 2)
				if !reflect.DeepEqual(got.IDs(), wantRanked[k].IDs()) || !reflect.DeepEqual(got.Scores(), wantRanked[k].Scores()) {
					errs <- fmt.Errorf("rank %v: got %v/%v, want %v/%v", ranked[k],
						got.IDs(), got.Scores(), wantRanked[k].IDs(), wantRanked[k].Scores())
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if idx.DocCount() != 3 || idx.Universe().GetCardinality() != 3 {
		t.Fatalf("index changed under concurrent reads: N=%d universe=%d", idx.DocCount(), idx.Universe().GetCardinality())
	}
}
