package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/kafka"
)

// maxLatencies bounds the window the latency percentiles are computed over.
const maxLatencies = 10000

type AggregatedStats struct {
	TotalSearches     int64            `json:"total_searches"`
	SyntaxErrors      int64            `json:"syntax_errors"`
	ByMode            map[string]int64 `json:"by_mode"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      int64            `json:"p50_latency_ms"`
	P95LatencyMs      int64            `json:"p95_latency_ms"`
	P99LatencyMs      int64            `json:"p99_latency_ms"`
	TopQueries        []QueryCount     `json:"top_queries"`
	TopTerms          []QueryCount     `json:"top_terms"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
	IndexBuilds       int64            `json:"index_builds"`
	LastBuild         *IndexEvent      `json:"last_build,omitempty"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds search and index events into running statistics. It is
// safe for concurrent use.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	syntaxErrors      int64
	byMode            map[string]int64
	cacheHits         int64
	cacheMisses       int64
	zeroResults       int64
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	termCounts        map[string]int64
	zeroResultQueries map[string]int64
	indexBuilds       int64
	lastBuild         *IndexEvent
	startTime         time.Time
	logger            *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byMode:            make(map[string]int64),
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		termCounts:        make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Record folds one event in. Unknown values are ignored.
func (a *Aggregator) Record(value any) {
	switch e := value.(type) {
	case SearchEvent:
		a.recordSearch(e)
	case *SearchEvent:
		a.recordSearch(*e)
	case IndexEvent:
		a.recordIndex(e)
	case *IndexEvent:
		a.recordIndex(*e)
	default:
		a.logger.Warn("ignoring unknown analytics event", "type", fmt.Sprintf("%T", value))
	}
}

// PublishBatch records events in process, letting the Aggregator stand in
// for a Kafka producer behind a Collector.
func (a *Aggregator) PublishBatch(_ context.Context, events []kafka.Event) error {
	for _, event := range events {
		a.Record(event.Value)
	}
	return nil
}

// HandleMessage decodes one Kafka message. Undecodable messages are logged
// and skipped so the consumer commits past them.
func (a *Aggregator) HandleMessage(_ context.Context, _ []byte, value []byte) error {
	env, err := kafka.DecodeJSON[envelope](value)
	if err != nil {
		a.logger.Error("failed to decode analytics event", "error", err)
		return nil
	}
	switch env.Type {
	case EventIndexBuild:
		event, err := kafka.DecodeJSON[IndexEvent](value)
		if err != nil {
			a.logger.Error("failed to decode index event", "error", err)
			return nil
		}
		a.recordIndex(event)
	case EventSearch, EventSyntaxError:
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			a.logger.Error("failed to decode search event", "error", err)
			return nil
		}
		a.recordSearch(event)
	default:
		a.logger.Warn("ignoring analytics event", "type", env.Type)
	}
	return nil
}

func (a *Aggregator) recordSearch(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalSearches++
	a.byMode[event.Mode]++
	a.queryCounts[event.Query]++
	if event.Type == EventSyntaxError {
		a.syntaxErrors++
		return
	}
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if event.TotalHits == 0 {
		a.zeroResults++
		a.zeroResultQueries[event.Query]++
	}
	for _, term := range event.Terms {
		a.termCounts[term]++
	}
	if len(a.latencies) < maxLatencies {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencies
	}
}

func (a *Aggregator) recordIndex(event IndexEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.indexBuilds++
	a.lastBuild = &event
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		SyntaxErrors:    a.syntaxErrors,
		ByMode:          make(map[string]int64, len(a.byMode)),
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		ZeroResultCount: a.zeroResults,
		IndexBuilds:     a.indexBuilds,
	}
	for mode, n := range a.byMode {
		stats.ByMode[mode] = n
	}
	if a.lastBuild != nil {
		build := *a.lastBuild
		stats.LastBuild = &build
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.TopTerms = topN(a.termCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
