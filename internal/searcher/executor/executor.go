package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/boolean"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/result"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
)

// Mode selects the evaluator a query runs through.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeBoolean Mode = "boolean"
	ModeRanked  Mode = "ranked"
)

// ParseMode accepts auto, boolean or ranked; empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeBoolean:
		return ModeBoolean, nil
	case ModeRanked:
		return ModeRanked, nil
	default:
		return "", fmt.Errorf("%w: unknown search mode %q", apperrors.ErrInvalidInput, s)
	}
}

// IsBoolean reports whether auto mode treats raw as a boolean expression.
func IsBoolean(raw string) bool {
	return parser.IsBoolean(raw)
}

// Source provides the index and the analysis pipeline it was built with.
type Source interface {
	Index() (*index.Index, error)
	Analyze(text string) []string
	NormalizeTerm(word string) string
}

type SearchResult struct {
	Query     string             `json:"query"`
	Mode      Mode               `json:"mode"`
	TotalHits int                `json:"total_hits"`
	Results   []result.ScoredDoc `json:"results"`
	Terms     []string           `json:"terms"`
	TermStats map[string]int     `json:"term_stats"`
}

type Executor struct {
	source  Source
	metrics *metrics.Metrics
}

// New creates an Executor. m may be nil.
func New(source Source, m *metrics.Metrics) *Executor {
	return &Executor{source: source, metrics: m}
}

// Boolean evaluates a boolean expression. Matches are in ascending id
// order and all carry result.BooleanScore.
func (e *Executor) Boolean(ctx context.Context, expr string) (result.QueryResult, error) {
	res, _, err := e.boolean(ctx, expr)
	return res, err
}

// Ranked analyzes free text with the corpus pipeline and ranks it.
func (e *Executor) Ranked(ctx context.Context, text string, limit int) (result.QueryResult, error) {
	res, _, err := e.ranked(ctx, e.source.Analyze(text), limit)
	return res, err
}

// RankedTokens ranks already processed query tokens.
func (e *Executor) RankedTokens(ctx context.Context, tokens []string, limit int) (result.QueryResult, error) {
	res, _, err := e.ranked(ctx, tokens, limit)
	return res, err
}

// Execute runs raw in the given mode, resolving auto with IsBoolean, and
// returns at most limit results (limit <= 0 means all).
func (e *Executor) Execute(ctx context.Context, raw string, mode Mode, limit int) (*SearchResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx).With("component", "query-executor")
	if mode == "" || mode == ModeAuto {
		mode = ModeRanked
		if IsBoolean(raw) {
			mode = ModeBoolean
		}
	}

	var (
		res   result.QueryResult
		total int
		terms []string
		err   error
	)
	switch mode {
	case ModeBoolean:
		res, total, err = e.boolean(ctx, raw)
		if err == nil {
			res = res.Truncate(limit)
			terms = e.booleanTerms(raw)
		}
	case ModeRanked:
		terms = e.source.Analyze(raw)
		res, total, err = e.ranked(ctx, terms, limit)
		terms = dedupe(terms)
	default:
		err = fmt.Errorf("%w: unknown search mode %q", apperrors.ErrInvalidInput, mode)
	}
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, apperrors.ErrQuerySyntax) {
			log.Warn("query rejected", "query", raw, "mode", mode, "error", err)
		} else {
			log.Error("query failed", "query", raw, "mode", mode, "error", err)
		}
		e.observe(mode, resultType(err, 0), elapsed, 0)
		return nil, err
	}

	out := &SearchResult{
		Query:     raw,
		Mode:      mode,
		TotalHits: total,
		Results:   res.Docs(),
		Terms:     terms,
		TermStats: e.termStats(terms),
	}
	e.observe(mode, resultType(nil, total), elapsed, res.Size())
	log.Info("query executed",
		"query", raw,
		"mode", mode,
		"terms", terms,
		"total_hits", total,
		"returned", res.Size(),
		"latency", elapsed,
	)
	return out, nil
}

func (e *Executor) boolean(ctx context.Context, expr string) (result.QueryResult, int, error) {
	idx, err := e.ready(ctx)
	if err != nil {
		return result.QueryResult{}, 0, err
	}
	q, err := parser.Parse(expr)
	if err != nil {
		return result.QueryResult{}, 0, err
	}
	res := boolean.New(idx, e.source.NormalizeTerm).Evaluate(q)
	return res, res.Size(), nil
}

func (e *Executor) ranked(ctx context.Context, tokens []string, limit int) (result.QueryResult, int, error) {
	idx, err := e.ready(ctx)
	if err != nil {
		return result.QueryResult{}, 0, err
	}
	scores := ranker.Scores(idx, tokens)
	return ranker.Collect(scores, limit), ranker.Matches(scores), nil
}

func (e *Executor) ready(ctx context.Context) (*index.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
	}
	return e.source.Index()
}

// booleanTerms lists the index terms a boolean expression refers to.
func (e *Executor) booleanTerms(expr string) []string {
	q, err := parser.Parse(expr)
	if err != nil {
		return nil
	}
	terms := make([]string, 0, len(q.Terms()))
	for _, word := range q.Terms() {
		if term := e.source.NormalizeTerm(word); term != "" {
			terms = append(terms, term)
		}
	}
	return dedupe(terms)
}

func (e *Executor) termStats(terms []string) map[string]int {
	stats := make(map[string]int, len(terms))
	idx, err := e.source.Index()
	if err != nil {
		return stats
	}
	for _, term := range terms {
		if ts, ok := idx.Stats(term); ok {
			stats[term] = ts.DocumentFrequency
		}
	}
	return stats
}

func (e *Executor) observe(mode Mode, resultType string, elapsed time.Duration, returned int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(string(mode), resultType).Inc()
	e.metrics.SearchLatency.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	if resultType == "hit" || resultType == "zero_result" {
		e.metrics.SearchResultsCount.WithLabelValues(string(mode)).Observe(float64(returned))
	}
}

func resultType(err error, total int) string {
	switch {
	case errors.Is(err, apperrors.ErrQuerySyntax):
		return "syntax_error"
	case err != nil:
		return "error"
	case total == 0:
		return "zero_result"
	default:
		return "hit"
	}
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
