// Package bootstrap holds the startup steps the commands share: connecting
// to backing services with retries and building the index from the
// configured corpus.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/resilience"
)

var connectRetry = resilience.RetryConfig{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

// NeedsPostgres reports whether cfg reads the corpus from, or snapshots
// analytics to, PostgreSQL.
func NeedsPostgres(cfg *config.Config) bool {
	if ingestion.ParseFormat(cfg.Index.Format) == ingestion.FormatPostgres {
		return true
	}
	return cfg.Analytics.Enabled && cfg.Analytics.SnapshotInterval > 0
}

func Postgres(ctx context.Context, cfg config.PostgresConfig) (*postgres.Client, error) {
	var client *postgres.Client
	err := resilience.Retry(ctx, "postgres-connect", connectRetry, func(ctx context.Context) error {
		c, err := postgres.New(ctx, cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("postgres connected", "host", cfg.Host, "database", cfg.Database)
	return client, nil
}

func Redis(ctx context.Context, cfg config.RedisConfig) (*pkgredis.Client, error) {
	var client *pkgredis.Client
	err := resilience.Retry(ctx, "redis-connect", connectRetry, func(ctx context.Context) error {
		c, err := pkgredis.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("redis connected", "addr", cfg.Addr)
	return client, nil
}

// BuildIndex creates the engine for cfg and builds it from the configured
// corpus. db may be nil unless the corpus lives in PostgreSQL.
func BuildIndex(ctx context.Context, cfg *config.Config, db *sql.DB, m *metrics.Metrics) (*indexer.Engine, error) {
	engine, err := indexer.NewEngine(cfg.Index, cfg.Tokens, m)
	if err != nil {
		return nil, err
	}
	if _, err := engine.BuildFrom(ctx, cfg.Index, db); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	return engine, nil
}
