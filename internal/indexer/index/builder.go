package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/weighting"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
)

// Builder accumulates documents into an Index. It is not safe for
// concurrent use; the Index it produces is.
type Builder struct {
	idx      *Index
	finished bool
	logger   *slog.Logger
}

func NewBuilder(scheme weighting.Scheme) *Builder {
	return &Builder{
		idx: &Index{
			scheme:   scheme,
			termIDs:  make(map[string]int),
			universe: roaring.New(),
			norms:    make(map[int]DocumentNorm),
		},
		logger: slog.Default().With("component", "index-builder"),
	}
}

// Add indexes one document. Ids must be unique and fit in 32 unsigned bits.
func (b *Builder) Add(doc Document) error {
	if b.finished {
		return fmt.Errorf("adding document %d: index already built", doc.ID)
	}
	if doc.ID < 0 || int64(doc.ID) > math.MaxUint32 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidDocumentID, doc.ID)
	}
	id := uint32(doc.ID)
	if b.idx.universe.Contains(id) {
		return fmt.Errorf("%w: %d", apperrors.ErrDuplicateDocument, doc.ID)
	}

	termData := make(map[string]int, len(doc.Tokens))
	for _, token := range doc.Tokens {
		if token == "" {
			continue
		}
		termData[token]++
	}

	idx := b.idx
	length := 0
	for term, freq := range termData {
		tid, exists := idx.termIDs[term]
		if !exists {
			tid = len(idx.terms)
			idx.termIDs[term] = tid
			idx.terms = append(idx.terms, term)
			idx.stats = append(idx.stats, TermStats{})
			idx.postings = append(idx.postings, make(PostingList, 0, 1))
			idx.docSets = append(idx.docSets, roaring.New())
		}
		idx.stats[tid].DocumentFrequency++
		idx.stats[tid].CollectionFrequency += freq
		idx.postings[tid] = append(idx.postings[tid], Posting{DocID: doc.ID, Frequency: freq})
		idx.docSets[tid].Add(id)
		idx.postingCount++
		length += freq
	}

	idx.universe.Add(id)
	idx.norms[doc.ID] = DocumentNorm{Length: length, Divisor: 1}
	return nil
}

// Finish computes document norms now that every document frequency is
// final, and returns the immutable Index. Further calls to Add fail.
func (b *Builder) Finish() *Index {
	if b.finished {
		return b.idx
	}
	b.finished = true
	idx := b.idx
	n := int(idx.universe.GetCardinality())
	idx.docCount = n

	sumSquares := make(map[int]float64, len(idx.norms))
	for tid, postings := range idx.postings {
		df := idx.stats[tid].DocumentFrequency
		for _, p := range postings {
			w := idx.scheme.Weight(p.Frequency, df, n)
			sumSquares[p.DocID] += w * w
		}
		idx.docSets[tid].RunOptimize()
	}
	idx.universe.RunOptimize()

	for docID, norm := range idx.norms {
		norm.VectorLength = math.Sqrt(sumSquares[docID])
		norm.Divisor = idx.scheme.Divisor(norm.VectorLength)
		idx.norms[docID] = norm
	}

	b.logger.Debug("index finalized",
		"docs", n,
		"terms", len(idx.terms),
		"postings", idx.postingCount,
		"scheme", idx.scheme.String(),
	)
	return idx
}

// Build consumes stream to exhaustion and returns the finished Index. Any
// stream error other than io.EOF, and any duplicate id, aborts the build.
func Build(ctx context.Context, stream DocumentStream, scheme weighting.Scheme) (*Index, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	b := NewBuilder(scheme)
	for ordinal := 0; ; ordinal++ {
		doc, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading document %d from stream: %w", ordinal, err)
		}
		if err := b.Add(doc); err != nil {
			return nil, fmt.Errorf("indexing document %d: %w", ordinal, err)
		}
		b.logger.Debug("document indexed", "doc_id", doc.ID, "token_count", len(doc.Tokens))
	}
	idx := b.Finish()
	b.logger.Info("index built",
		"docs", idx.DocCount(),
		"terms", idx.TermCount(),
		"postings", idx.PostingCount(),
		"scheme", scheme.String(),
		"duration", time.Since(start),
	)
	return idx, nil
}
