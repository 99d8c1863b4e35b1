package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/tokenizer"
)

// TokenStream adapts a Reader into an index.DocumentStream by validating
// each raw document and running its text through the analysis pipeline.
type TokenStream struct {
	reader   Reader
	pipeline tokenizer.Pipeline
	sink     Sink
	count    int
	logger   *slog.Logger
}

// NewTokenStream wraps reader. sink may be nil.
func NewTokenStream(reader Reader, pipeline tokenizer.Pipeline, sink Sink) *TokenStream {
	return &TokenStream{
		reader:   reader,
		pipeline: pipeline,
		sink:     sink,
		logger:   slog.Default().With("component", "token-stream"),
	}
}

func (s *TokenStream) Next(ctx context.Context) (index.Document, error) {
	raw, err := s.reader.Read(ctx)
	if err != nil {
		return index.Document{}, err
	}
	if err := Validate(raw); err != nil {
		return index.Document{}, fmt.Errorf("validating document: %w", err)
	}
	if s.sink != nil {
		s.sink.Put(raw)
	}
	s.count++
	tokens := s.pipeline.Analyze(raw.IndexText())
	s.logger.Debug("document analyzed", "doc_id", raw.ID, "name", raw.Name, "tokens", len(tokens))
	return index.Document{ID: raw.ID, Tokens: tokens}, nil
}

// Count is the number of documents passed on so far.
func (s *TokenStream) Count() int {
	return s.count
}
