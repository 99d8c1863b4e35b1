// Command loadtest drives the search API with a fixed mix of queries from
// concurrent workers and prints throughput, latency percentiles, status
// codes and the cache hit ratio.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s] [-mode auto] [-queries queries.txt]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/handler"
)

// defaultQueries mixes ranked free text with boolean expressions, including
// one malformed expression so syntax-error handling shows up in the report.
var defaultQueries = []string{
	"inverted index",
	"cosine similarity ranking",
	"term frequency weighting",
	"document frequency",
	"vector space model",
	"query processing",
	"index AND ranking",
	"boolean OR vector",
	"search AND !distributed",
	"weighting AND term OR frequency",
	"!stopword",
	"index AND",
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Mode        string
	Limit       int
	Queries     []string
}

type Stats struct {
	total     atomic.Int64
	success   atomic.Int64
	failed    atomic.Int64
	cacheHits atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
	codes     map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies: make([]time.Duration, 0, 100000),
		codes:     make(map[int]int64),
	}
}

// Record counts one request. A transport error is recorded with status 0
// and no latency.
func (s *Stats) Record(d time.Duration, status int, cacheHit bool, err error) {
	s.total.Add(1)
	if err != nil {
		s.failed.Add(1)
		return
	}
	if status >= 200 && status < 300 {
		s.success.Add(1)
	} else {
		s.failed.Add(1)
	}
	if cacheHit {
		s.cacheHits.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.codes[status]++
	s.mu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	mode := flag.String("mode", "auto", "query mode: auto, boolean or ranked")
	limit := flag.Int("limit", 10, "results per query")
	queryFile := flag.String("queries", "", "file with one query per line (default: built-in mix)")
	flag.Parse()

	queries := defaultQueries
	if *queryFile != "" {
		f, err := os.Open(*queryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening queries: %v\n", err)
			os.Exit(1)
		}
		queries, err = readQueries(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading queries: %v\n", err)
			os.Exit(1)
		}
		if len(queries) == 0 {
			fmt.Fprintf(os.Stderr, "%s contains no queries\n", *queryFile)
			os.Exit(1)
		}
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		Mode:        *mode,
		Limit:       *limit,
		Queries:     queries,
	}

	fmt.Println("=== Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Mode:        %s\n", cfg.Mode)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats := run(ctx, cfg)
	if !printReport(os.Stdout, stats, time.Since(start)) {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				target := searchURL(cfg, cfg.Queries[i%len(cfg.Queries)])
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
				if err != nil {
					return err
				}
				begin := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(begin)
				if err != nil {
					if ctx.Err() == nil {
						stats.Record(elapsed, 0, false, err)
					}
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.Record(elapsed, resp.StatusCode, resp.Header.Get(handler.CacheHeader) == "HIT", nil)
			}
			return nil
		})
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fmt.Print("Running")
		for {
			select {
			case <-ctx.Done():
				fmt.Println(" done")
				fmt.Println()
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "load test aborted: %v\n", err)
	}
	cancel()
	<-done
	return stats
}

func searchURL(cfg Config, query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("mode", cfg.Mode)
	v.Set("limit", strconv.Itoa(cfg.Limit))
	return cfg.BaseURL + "/api/v1/search?" + v.Encode()
}

// readQueries returns the non-blank lines of r. Lines starting with # are
// comments.
func readQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	return queries, scanner.Err()
}

// printReport writes the summary and reports whether any request completed.
func printReport(w io.Writer, stats *Stats, elapsed time.Duration) bool {
	total := stats.total.Load()
	failed := stats.failed.Load()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	fmt.Fprintf(w, "Successful:      %d\n", stats.success.Load())
	fmt.Fprintf(w, "Errors:          %d\n", failed)
	if total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(failed)/float64(total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/elapsed.Seconds())
		fmt.Fprintf(w, "Cache Hits:      %.2f%%\n", float64(stats.cacheHits.Load())/float64(total)*100)
	}

	stats.mu.Lock()
	latencies := append([]time.Duration(nil), stats.latencies...)
	codes := make([]int, 0, len(stats.codes))
	for code := range stats.codes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	counts := make([]int64, len(codes))
	for i, code := range codes {
		counts[i] = stats.codes[code]
	}
	stats.mu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))
		var sq float64
		for _, l := range latencies {
			diff := float64(l - avg)
			sq += diff * diff
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", avg)
		fmt.Fprintf(w, "P50:    %s\n", percentile(latencies, 50))
		fmt.Fprintf(w, "P90:    %s\n", percentile(latencies, 90))
		fmt.Fprintf(w, "P95:    %s\n", percentile(latencies, 95))
		fmt.Fprintf(w, "P99:    %s\n", percentile(latencies, 99))
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
		fmt.Fprintf(w, "StdDev: %s\n", time.Duration(math.Sqrt(sq/float64(len(latencies)))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	for i, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, counts[i])
	}

	if total == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WARNING: No requests completed. Is the search service running?")
		return false
	}
	return true
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
