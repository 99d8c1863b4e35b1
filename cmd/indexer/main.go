// Command indexer builds the index once from the configured corpus and logs
// diagnostics: collection sizes, the most frequent terms, document length
// statistics, and optionally the full entry of chosen terms. With
// analytics publishing enabled the build is reported to Kafka.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-top 20] [-term dog,cat]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpus := flag.String("corpus", "", "corpus path, overriding index.corpusPath")
	top := flag.Int("top", 20, "number of most frequent terms to log")
	terms := flag.String("term", "", "comma-separated words whose postings are logged")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpus != "" {
		cfg.Index.CorpusPath = *corpus
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer", "scheme", cfg.Index.Scheme, "format", cfg.Index.Format, "corpus", cfg.Index.CorpusPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if bootstrap.NeedsPostgres(cfg) {
		pg, err := bootstrap.Postgres(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		db = pg.DB
	}

	start := time.Now()
	engine, err := bootstrap.BuildIndex(ctx, cfg, db, nil)
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	idx, _ := engine.Index()

	logSummary(idx, *top)
	if *terms != "" {
		logTerms(engine, idx, strings.Split(*terms, ","))
	}

	if cfg.Analytics.Enabled && cfg.Analytics.Publish {
		if err := publishBuild(ctx, cfg.Kafka, idx, elapsed); err != nil {
			slog.Error("failed to publish build event", "error", err)
		}
	}
	slog.Info("indexer finished", "duration", elapsed)
}

func logSummary(idx *index.Index, top int) {
	slog.Info("index summary",
		"scheme", idx.Scheme().String(),
		"fingerprint", idx.Fingerprint(),
		"documents", idx.DocCount(),
		"terms", idx.TermCount(),
		"postings", idx.PostingCount(),
	)

	vocabulary := idx.Terms()
	sort.SliceStable(vocabulary, func(i, j int) bool {
		si, _ := idx.Stats(vocabulary[i])
		sj, _ := idx.Stats(vocabulary[j])
		return si.DocumentFrequency > sj.DocumentFrequency
	})
	if top > len(vocabulary) {
		top = len(vocabulary)
	}
	for rank, term := range vocabulary[:top] {
		stats, _ := idx.Stats(term)
		slog.Info("frequent term",
			"rank", rank+1,
			"term", term,
			"df", stats.DocumentFrequency,
			"cf", stats.CollectionFrequency,
		)
	}

	var (
		minLen, maxLen, total int
		counted               int
	)
	it := idx.Universe().Iterator()
	for it.HasNext() {
		norm, ok := idx.Norm(int(it.Next()))
		if !ok {
			continue
		}
		if counted == 0 || norm.Length < minLen {
			minLen = norm.Length
		}
		if norm.Length > maxLen {
			maxLen = norm.Length
		}
		total += norm.Length
		counted++
	}
	if counted > 0 {
		slog.Info("document lengths",
			"min", minLen,
			"max", maxLen,
			"avg", float64(total)/float64(counted),
		)
	}
}

func logTerms(engine *indexer.Engine, idx *index.Index, words []string) {
	for _, word := range words {
		term := engine.NormalizeTerm(strings.TrimSpace(word))
		entry, ok := idx.Entry(term)
		if !ok {
			slog.Info("term not indexed", "word", word, "term", term)
			continue
		}
		slog.Info("term", "term", entry.Term, "df", entry.Stats.DocumentFrequency, "cf", entry.Stats.CollectionFrequency)
		for _, p := range entry.Postings {
			slog.Info("posting",
				"term", entry.Term,
				"doc_id", p.DocID,
				"tf", p.Frequency,
				"weight", idx.Weight(p, entry.Stats),
			)
		}
	}
}

func publishBuild(ctx context.Context, cfg config.KafkaConfig, idx *index.Index, elapsed time.Duration) error {
	producer := kafka.NewProducer(cfg, cfg.Topics.AnalyticsEvents)
	defer producer.Close()
	return producer.Publish(ctx, kafka.Event{
		Key: "index",
		Value: analytics.IndexEvent{
			Type:      analytics.EventIndexBuild,
			Scheme:    idx.Scheme().String(),
			Documents: idx.DocCount(),
			Terms:     idx.TermCount(),
			Postings:  idx.PostingCount(),
			LatencyMs: elapsed.Milliseconds(),
			Timestamp: time.Now().UTC(),
		},
		Time: time.Now().UTC(),
	})
}
