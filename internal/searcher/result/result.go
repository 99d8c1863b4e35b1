// Package result holds the ordered (document id, score) sequence returned
// by both query evaluators.
package result

// BooleanScore is the score every boolean match carries.
const BooleanScore = 1.0

// ScoredDoc is one entry of a QueryResult.
type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// QueryResult is an immutable ordered list of scored documents without
// duplicate ids.
type QueryResult struct {
	docs []ScoredDoc
}

// New wraps docs. The caller guarantees ordering and id uniqueness and
// must not modify docs afterwards.
func New(docs []ScoredDoc) QueryResult {
	return QueryResult{docs: docs}
}

// FromIDs builds a boolean result: every id carries BooleanScore, in the
// order given.
func FromIDs(ids []int) QueryResult {
	docs := make([]ScoredDoc, len(ids))
	for i, id := range ids {
		docs[i] = ScoredDoc{DocID: id, Score: BooleanScore}
	}
	return QueryResult{docs: docs}
}

func (r QueryResult) Size() int {
	return len(r.docs)
}

// IDs returns the document ids in result order.
func (r QueryResult) IDs() []int {
	ids := make([]int, len(r.docs))
	for i, d := range r.docs {
		ids[i] = d.DocID
	}
	return ids
}

// Scores returns the scores parallel to IDs.
func (r QueryResult) Scores() []float64 {
	scores := make([]float64, len(r.docs))
	for i, d := range r.docs {
		scores[i] = d.Score
	}
	return scores
}

// Docs returns a copy of the entries.
func (r QueryResult) Docs() []ScoredDoc {
	out := make([]ScoredDoc, len(r.docs))
	copy(out, r.docs)
	return out
}

// Truncate returns the first k entries; k <= 0 keeps everything.
func (r QueryResult) Truncate(k int) QueryResult {
	if k <= 0 || k >= len(r.docs) {
		return r
	}
	return QueryResult{docs: r.docs[:k:k]}
}
