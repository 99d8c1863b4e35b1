// Package boolean evaluates parsed boolean expressions against an index
// using roaring bitmaps as the document sets.
package boolean

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/result"
)

// Normalizer maps a raw query word to the index term it should match. An
// empty return means the word can match nothing, e.g. a stop word.
type Normalizer func(word string) string

// Identity matches query words against the index verbatim.
func Identity(word string) string { return word }

// Evaluator resolves expressions against one index.
type Evaluator struct {
	idx       *index.Index
	normalize Normalizer
}

func New(idx *index.Index, normalize Normalizer) *Evaluator {
	if normalize == nil {
		normalize = Identity
	}
	return &Evaluator{idx: idx, normalize: normalize}
}

// Search parses and evaluates expr. Every match carries
// result.BooleanScore and ids come back in ascending order.
func (e *Evaluator) Search(expr string) (result.QueryResult, error) {
	q, err := parser.Parse(expr)
	if err != nil {
		return result.QueryResult{}, err
	}
	return e.Evaluate(q), nil
}

func (e *Evaluator) Evaluate(q *parser.Query) result.QueryResult {
	set := e.Set(q.Root)
	ids := make([]int, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		ids = append(ids, int(it.Next()))
	}
	return result.FromIDs(ids)
}

// Set returns the document set of n. The returned bitmap may be shared
// with the index and must not be modified.
func (e *Evaluator) Set(n parser.Node) *roaring.Bitmap {
	switch v := n.(type) {
	case *parser.Term:
		term := e.normalize(v.Text)
		if term == "" {
			return roaring.New()
		}
		return e.idx.Docs(term)
	case *parser.Not:
		return roaring.AndNot(e.idx.Universe(), e.Set(v.Child))
	case *parser.And:
		return e.intersect(v.Children)
	case *parser.Or:
		return e.union(v.Children)
	default:
		return roaring.New()
	}
}

// intersect folds from the smallest operand up and stops at the first
// empty intermediate.
func (e *Evaluator) intersect(children []parser.Node) *roaring.Bitmap {
	sets := make([]*roaring.Bitmap, len(children))
	for i, c := range children {
		sets[i] = e.Set(c)
	}
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].GetCardinality() < sets[j].GetCardinality()
	})
	acc := sets[0]
	for _, s := range sets[1:] {
		if acc.IsEmpty() {
			break
		}
		acc = roaring.And(acc, s)
	}
	return acc
}

func (e *Evaluator) union(children []parser.Node) *roaring.Bitmap {
	acc := e.Set(children[0])
	for _, c := range children[1:] {
		acc = roaring.Or(acc, e.Set(c))
	}
	return acc
}
