// Command search builds the index from a corpus and answers queries typed
// one per line on standard input. Lines containing '!', AND or OR are
// boolean expressions, anything else is ranked free text. "exit" or end of
// input quits.
//
// Usage:
//
//	go run ./cmd/search [-config configs/development.yaml] [-corpus data.tdt] [-scheme ltc]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/repl"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "search: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (optional)")
	corpus := flag.String("corpus", "", "corpus path, overriding index.corpusPath")
	format := flag.String("format", "", "corpus format (tdt, jsonl, postgres), overriding index.format")
	scheme := flag.String("scheme", "", "SMART weighting code, overriding index.scheme")
	limit := flag.Int("limit", 0, "maximum results per query, 0 for all")
	payloads := flag.Bool("payloads", false, "print document text instead of id:score pairs")
	prompt := flag.String("prompt", "> ", "prompt printed before each query")
	logLevel := flag.String("log-level", "warn", "log level; logs go to stderr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *corpus != "" {
		cfg.Index.CorpusPath = *corpus
	}
	if *format != "" {
		cfg.Index.Format = *format
	}
	if *scheme != "" {
		cfg.Index.Scheme = *scheme
	}
	if *payloads {
		cfg.Index.Payloads = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Results go to stdout; logs must not interleave with them.
	logger.SetupWriter(os.Stderr, *logLevel, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if bootstrap.NeedsPostgres(cfg) {
		pg, err := bootstrap.Postgres(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres unavailable: %w", err)
		}
		defer pg.Close()
		db = pg.DB
	}

	engine, err := bootstrap.BuildIndex(ctx, cfg, db, nil)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	r := repl.New(executor.New(engine, nil), engine.Documents(), *limit, *prompt)
	if err := r.Run(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("query loop: %w", err)
	}
	return nil
}
