// Package index holds the immutable inverted index: the term statistics
// table, the posting store, and per-document norms. An Index is produced
// once by a Builder and is safe for any number of concurrent readers.
package index

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/weighting"
)

// Index is the read-only inverted index. Posting lists are contiguous
// per-term slices addressed through termIDs.
type Index struct {
	scheme       weighting.Scheme
	termIDs      map[string]int
	terms        []string
	stats        []TermStats
	postings     []PostingList
	docSets      []*roaring.Bitmap
	universe     *roaring.Bitmap
	norms        map[int]DocumentNorm
	docCount     int
	postingCount int
}

func (idx *Index) Scheme() weighting.Scheme {
	return idx.scheme
}

// DocCount is N, the number of distinct documents indexed.
func (idx *Index) DocCount() int {
	return idx.docCount
}

func (idx *Index) TermCount() int {
	return len(idx.terms)
}

func (idx *Index) PostingCount() int {
	return idx.postingCount
}

// Stats returns the statistics of term, or false when the term never
// occurred in the collection.
func (idx *Index) Stats(term string) (TermStats, bool) {
	tid, ok := idx.termIDs[term]
	if !ok {
		return TermStats{}, false
	}
	return idx.stats[tid], true
}

// Postings returns the posting list of term. The slice is shared and must
// not be modified.
func (idx *Index) Postings(term string) PostingList {
	tid, ok := idx.termIDs[term]
	if !ok {
		return nil
	}
	return idx.postings[tid]
}

// Docs returns the set of documents containing term, or an empty set. The
// bitmap is shared: callers combine it with the non-mutating roaring
// operations (roaring.And, roaring.Or, roaring.AndNot) only.
func (idx *Index) Docs(term string) *roaring.Bitmap {
	tid, ok := idx.termIDs[term]
	if !ok {
		return roaring.New()
	}
	return idx.docSets[tid]
}

// Universe is the set of every document id in the index. Same sharing
// rules as Docs.
func (idx *Index) Universe() *roaring.Bitmap {
	return idx.universe
}

// Norm returns the norm record of a document.
func (idx *Index) Norm(docID int) (DocumentNorm, bool) {
	n, ok := idx.norms[docID]
	return n, ok
}

// Divisor is the value document weights of docID are divided by at
// scoring time. Unknown documents divide by 1.
func (idx *Index) Divisor(docID int) float64 {
	if n, ok := idx.norms[docID]; ok && n.Divisor != 0 {
		return n.Divisor
	}
	return 1
}

// Weight is the normalized weight of a posting whose term has stats ts.
func (idx *Index) Weight(p Posting, ts TermStats) float64 {
	w := idx.scheme.Weight(p.Frequency, ts.DocumentFrequency, idx.docCount)
	if w == 0 {
		return 0
	}
	return w / idx.Divisor(p.DocID)
}

// DocWeight is the normalized weight of term in docID, 0 when the term
// does not occur there.
func (idx *Index) DocWeight(term string, docID int) float64 {
	tid, ok := idx.termIDs[term]
	if !ok {
		return 0
	}
	for _, p := range idx.postings[tid] {
		if p.DocID == docID {
			return idx.Weight(p, idx.stats[tid])
		}
	}
	return 0
}

// Terms returns the vocabulary in lexical order.
func (idx *Index) Terms() []string {
	terms := make([]string, len(idx.terms))
	copy(terms, idx.terms)
	sort.Strings(terms)
	return terms
}

// Entry returns the statistics and a copy of the postings of term.
func (idx *Index) Entry(term string) (TermEntry, bool) {
	tid, ok := idx.termIDs[term]
	if !ok {
		return TermEntry{}, false
	}
	postings := make(PostingList, len(idx.postings[tid]))
	copy(postings, idx.postings[tid])
	return TermEntry{Term: term, Stats: idx.stats[tid], Postings: postings}, true
}

// Fingerprint identifies the contents of the index well enough to key
// cached query results.
func (idx *Index) Fingerprint() string {
	return fmt.Sprintf("%s-%d-%d-%d", idx.scheme, idx.DocCount(), len(idx.terms), idx.postingCount)
}
