package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/result"
)

// QueryVector weights processed query tokens with the index's scheme:
// tf over counts within the query, the index's df, then normalization.
// Terms absent from the index are left out since they weigh 0.
func QueryVector(idx *index.Index, tokens []string) map[string]float64 {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			counts[tok]++
		}
	}
	scheme := idx.Scheme()
	vec := make(map[string]float64, len(counts))
	for term, raw := range counts {
		stats, ok := idx.Stats(term)
		if !ok {
			continue
		}
		if w := scheme.Weight(raw, stats.DocumentFrequency, idx.DocCount()); w != 0 {
			vec[term] = w
		}
	}
	return scheme.Normalize(vec)
}

// Rank scores every document sharing a term with the query by the dot
// product of query and document weights, term at a time. Documents
// scoring 0 are dropped. Results are ordered by descending score, then
// ascending id; limit <= 0 returns all of them.
func Rank(idx *index.Index, tokens []string, limit int) result.QueryResult {
	return Collect(Scores(idx, tokens), limit)
}

// Scores returns the accumulator of every document sharing a term with the
// query. Entries may be 0 when a term carries no weight.
func Scores(idx *index.Index, tokens []string) map[int]float64 {
	qvec := QueryVector(idx, tokens)
	if len(qvec) == 0 {
		return nil
	}
	terms := make([]string, 0, len(qvec))
	for term := range qvec {
		terms = append(terms, term)
	}
	// Fixed accumulation order keeps floating-point sums reproducible.
	sort.Strings(terms)

	scores := make(map[int]float64)
	for _, term := range terms {
		qw := qvec[term]
		stats, _ := idx.Stats(term)
		for _, p := range idx.Postings(term) {
			scores[p.DocID] += qw * idx.Weight(p, stats)
		}
	}
	return scores
}

// Collect orders the positive entries of scores and keeps the best limit
// of them.
func Collect(scores map[int]float64, limit int) result.QueryResult {
	if limit > 0 && limit < len(scores) {
		return result.New(topK(scores, limit))
	}
	docs := make([]result.ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		docs = append(docs, result.ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(docs, func(i, j int) bool {
		return better(docs[i], docs[j])
	})
	return result.New(docs)
}

// Matches counts the documents Collect would keep without a limit.
func Matches(scores map[int]float64) int {
	n := 0
	for _, score := range scores {
		if score > 0 {
			n++
		}
	}
	return n
}

// better orders by descending score, then ascending id.
func better(a, b result.ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}
