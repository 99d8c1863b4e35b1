package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/docstore"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/weighting"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
)

// Engine owns the analysis pipeline shared by documents and queries and the
// index built from a corpus. The index is published once, after a
// successful build, and never changes afterwards.
type Engine struct {
	scheme   weighting.Scheme
	pipeline tokenizer.Pipeline
	docs     *docstore.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	idx      atomic.Pointer[index.Index]
}

// NewEngine validates the weighting scheme and prepares the pipeline. When
// cfg.Payloads is set the engine keeps every raw document for display. m
// may be nil.
func NewEngine(cfg config.IndexConfig, tokens config.TokensConfig, m *metrics.Metrics) (*Engine, error) {
	scheme, err := weighting.Parse(cfg.Scheme)
	if err != nil {
		return nil, fmt.Errorf("index scheme: %w", err)
	}
	tok, err := tokenizer.ByName(tokens.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}
	e := &Engine{
		scheme: scheme,
		pipeline: tokenizer.Pipeline{
			Tokenizer: tok,
			Processor: tokenizer.NewProcessor(tokenizer.Options{
				Lowercase:       tokens.Lowercase,
				RemoveStopwords: tokens.RemoveStopwords,
				Stem:            tokens.Stem,
			}),
		},
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
	if cfg.Payloads {
		e.docs = docstore.New()
	}
	return e, nil
}

// Build reads the whole corpus from reader and publishes the resulting
// index. An engine builds at most once.
func (e *Engine) Build(ctx context.Context, reader ingestion.Reader) (*index.Index, error) {
	if e.idx.Load() != nil {
		return nil, fmt.Errorf("index already built")
	}
	var sink ingestion.Sink
	if e.docs != nil {
		sink = e.docs
	}
	stream := ingestion.NewTokenStream(reader, e.pipeline, sink)

	start := time.Now()
	e.logger.Info("index build started", "scheme", e.scheme.String())
	idx, err := index.Build(ctx, stream, e.scheme)
	if err != nil {
		e.logger.Error("index build failed", "documents_read", stream.Count(), "error", err)
		return nil, err
	}
	elapsed := time.Since(start)
	if !e.idx.CompareAndSwap(nil, idx) {
		return nil, fmt.Errorf("index already built")
	}

	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Add(float64(idx.DocCount()))
		e.metrics.IndexBuildDuration.Observe(elapsed.Seconds())
		e.metrics.IndexDocuments.Set(float64(idx.DocCount()))
		e.metrics.IndexTerms.Set(float64(idx.TermCount()))
		e.metrics.IndexPostings.Set(float64(idx.PostingCount()))
	}
	e.logger.Info("index ready",
		"documents", idx.DocCount(),
		"terms", idx.TermCount(),
		"postings", idx.PostingCount(),
		"duration", elapsed,
	)
	return idx, nil
}

// BuildFrom opens the corpus cfg names and builds from it. db is only used
// for the postgres format and may be nil otherwise.
func (e *Engine) BuildFrom(ctx context.Context, cfg config.IndexConfig, db *sql.DB) (*index.Index, error) {
	format := ingestion.ParseFormat(cfg.Format)
	reader, closer, err := ingestion.Open(format, cfg.CorpusPath, db)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	e.logger.Info("corpus opened", "format", format, "path", cfg.CorpusPath)
	return e.Build(ctx, reader)
}

// Index returns the built index or ErrIndexNotReady.
func (e *Engine) Index() (*index.Index, error) {
	idx := e.idx.Load()
	if idx == nil {
		return nil, apperrors.ErrIndexNotReady
	}
	return idx, nil
}

// Ready is a readiness check: nil once the index is published.
func (e *Engine) Ready(context.Context) error {
	_, err := e.Index()
	return err
}

func (e *Engine) Scheme() weighting.Scheme {
	return e.scheme
}

// Analyze runs query text through the same pipeline the corpus went
// through.
func (e *Engine) Analyze(text string) []string {
	return e.pipeline.Analyze(text)
}

// NormalizeTerm maps one boolean query word to its index term: the first
// token the pipeline produces from it, or "" when it produces none.
func (e *Engine) NormalizeTerm(word string) string {
	tokens := e.pipeline.Analyze(word)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// Documents is the payload store, nil when payloads are disabled.
func (e *Engine) Documents() *docstore.Store {
	return e.docs
}
