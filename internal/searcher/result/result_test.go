package result

import (
	"reflect"
	"testing"
)

func TestQueryResultAccessors(t *testing.T) {
	r := New([]ScoredDoc{{DocID: 2, Score: 0.9}, {DocID: 1, Score: 0.4}})
	if r.Size() != 2 {
		t.Fatalf("expected size 2 got %d", r.Size())
	}
	if !reflect.DeepEqual(r.IDs(), []int{2, 1}) {
		t.Fatalf("unexpected ids %v", r.IDs())
	}
	if !reflect.DeepEqual(r.Scores(), []float64{0.9, 0.4}) {
		t.Fatalf("unexpected scores %v", r.Scores())
	}

	docs := r.Docs()
	docs[0].Score = 0
	if r.Scores()[0] != 0.9 {
		t.Fatal("Docs must return a copy")
	}
}

func TestFromIDs(t *testing.T) {
	r := FromIDs([]int{1, 5, 9})
	for _, s := range r.Scores() {
		if s != BooleanScore {
			t.Fatalf("expected sentinel score, got %v", s)
		}
	}
	if !reflect.DeepEqual(r.IDs(), []int{1, 5, 9}) {
		t.Fatalf("unexpected ids %v", r.IDs())
	}
}

func TestTruncate(t *testing.T) {
	r := FromIDs([]int{1, 2, 3})
	if got := r.Truncate(2).IDs(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("Truncate(2) = %v", got)
	}
	if r.Truncate(0).Size() != 3 || r.Truncate(10).Size() != 3 {
		t.Fatal("non-positive or oversized k must keep everything")
	}
	var empty QueryResult
	if empty.Size() != 0 || len(empty.IDs()) != 0 {
		t.Fatal("zero value must be an empty result")
	}
}
