package ranker

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/result"
)

// topK selects the best k positive scores with a bounded min-heap.
func topK(scores map[int]float64, k int) []result.ScoredDoc {
	h := &scoredDocHeap{}
	heap.Init(h)
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		doc := result.ScoredDoc{DocID: docID, Score: score}
		if h.Len() < k {
			heap.Push(h, doc)
			continue
		}
		if better(doc, (*h)[0]) {
			(*h)[0] = doc
			heap.Fix(h, 0)
		}
	}
	out := make([]result.ScoredDoc, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(result.ScoredDoc)
	}
	return out
}

// scoredDocHeap keeps the worst retained document at the root.
type scoredDocHeap []result.ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool {
	return better(h[j], h[i])
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(result.ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
