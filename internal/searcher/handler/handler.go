package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/middleware"
)

// CacheHeader reports HIT or MISS on search responses when caching is on.
const CacheHeader = "X-Cache"

type SearchExecutor interface {
	Execute(ctx context.Context, raw string, mode executor.Mode, limit int) (*executor.SearchResult, error)
}

// IndexSource exposes the live index for the inspection endpoints.
type IndexSource interface {
	Index() (*index.Index, error)
	NormalizeTerm(word string) string
}

// Tracker receives query events; *analytics.Collector implements it.
type Tracker interface {
	Track(key string, value any)
}

type Handler struct {
	executor     SearchExecutor
	source       IndexSource
	cache        *cache.QueryCache
	tracker      Tracker
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. queryCache and tracker may be nil.
func New(exec SearchExecutor, source IndexSource, queryCache *cache.QueryCache, tracker Tracker, cfg config.SearchConfig) *Handler {
	return &Handler{
		executor:     exec,
		source:       source,
		cache:        queryCache,
		tracker:      tracker,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?q=...&mode=auto|boolean|ranked&limit=N.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	params := r.URL.Query()
	if !params.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	query := params.Get("q")

	mode, err := executor.ParseMode(params.Get("mode"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := h.defaultLimit
	if limitStr := params.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if h.maxResults > 0 && (limit <= 0 || limit > h.maxResults) {
		limit = h.maxResults
	}

	result, cacheHit, err := h.execute(ctx, query, mode, limit)
	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if errors.Is(err, apperrors.ErrQuerySyntax) {
			h.track(ctx, analytics.SearchEvent{
				Type:      analytics.EventSyntaxError,
				Query:     query,
				Mode:      string(mode),
				LatencyMs: latencyMs,
			})
		}
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			log.Error("search failed", "query", query, "error", err)
			h.writeError(w, status, "search failed")
			return
		}
		h.writeError(w, status, err.Error())
		return
	}

	log.Info("search completed",
		"query", query,
		"mode", result.Mode,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	h.track(ctx, analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     query,
		Mode:      string(result.Mode),
		Terms:     result.Terms,
		TotalHits: result.TotalHits,
		Returned:  len(result.Results),
		LatencyMs: latencyMs,
		CacheHit:  cacheHit,
	})
	if h.cache != nil {
		w.Header().Set(CacheHeader, cacheStatus(cacheHit))
	}
	h.writeJSON(w, http.StatusOK, result)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func (h *Handler) execute(ctx context.Context, query string, mode executor.Mode, limit int) (*executor.SearchResult, bool, error) {
	if h.cache == nil {
		result, err := h.executor.Execute(ctx, query, mode, limit)
		return result, false, err
	}
	idx, err := h.source.Index()
	if err != nil {
		return nil, false, err
	}
	key := cache.Key{Query: query, Mode: mode, Limit: limit, Fingerprint: idx.Fingerprint()}
	return h.cache.GetOrCompute(ctx, key, func() (*executor.SearchResult, error) {
		return h.executor.Execute(ctx, query, mode, limit)
	})
}

func (h *Handler) track(ctx context.Context, event analytics.SearchEvent) {
	if h.tracker == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = middleware.GetRequestID(ctx)
	h.tracker.Track(event.Mode, event)
}

type indexStats struct {
	Scheme      string `json:"scheme"`
	Documents   int    `json:"documents"`
	Terms       int    `json:"terms"`
	Postings    int    `json:"postings"`
	Fingerprint string `json:"fingerprint"`
}

// IndexStats serves GET /api/v1/index/stats.
func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	idx, err := h.source.Index()
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, indexStats{
		Scheme:      idx.Scheme().String(),
		Documents:   idx.DocCount(),
		Terms:       idx.TermCount(),
		Postings:    idx.PostingCount(),
		Fingerprint: idx.Fingerprint(),
	})
}

type weightedPosting struct {
	DocID     int     `json:"doc_id"`
	Frequency int     `json:"frequency"`
	Weight    float64 `json:"weight"`
}

type termResponse struct {
	Term     string            `json:"term"`
	Stats    index.TermStats   `json:"stats"`
	Postings []weightedPosting `json:"postings"`
}

// Term serves GET /api/v1/index/terms/{term}. The word is normalized the
// way boolean query words are.
func (h *Handler) Term(w http.ResponseWriter, r *http.Request) {
	idx, err := h.source.Index()
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	word := r.PathValue("term")
	term := h.source.NormalizeTerm(word)
	entry, ok := idx.Entry(term)
	if !ok {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("term %q is not indexed", word))
		return
	}
	postings := make([]weightedPosting, len(entry.Postings))
	for i, p := range entry.Postings {
		postings[i] = weightedPosting{
			DocID:     p.DocID,
			Frequency: p.Frequency,
			Weight:    idx.Weight(p, entry.Stats),
		}
	}
	h.writeJSON(w, http.StatusOK, termResponse{Term: entry.Term, Stats: entry.Stats, Postings: postings})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  h.cache.BreakerState(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
