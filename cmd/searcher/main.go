// Command searcher builds the index from the configured corpus and serves
// boolean and ranked queries over HTTP.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "scheme", cfg.Index.Scheme)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	var pg *postgres.Client
	var db *sql.DB
	if bootstrap.NeedsPostgres(cfg) {
		pg, err = bootstrap.Postgres(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		db = pg.DB
		checker.Register("postgres", health.Ping(pg.Ping, false))
	}

	engine, err := bootstrap.BuildIndex(ctx, cfg, db, m)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}
	checker.Register("index", health.Ping(engine.Ready, false))
	idx, _ := engine.Index()

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := bootstrap.Redis(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.Ping(redisClient.Ping, true))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var tracker handler.Tracker
	var aggregator *analytics.Aggregator
	var snapshots *analytics.Store
	if cfg.Analytics.Enabled {
		var publisher analytics.Publisher
		if cfg.Analytics.Publish {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
			defer producer.Close()
			publisher = producer
			slog.Info("publishing analytics events", "topic", cfg.Kafka.Topics.AnalyticsEvents)
		} else {
			aggregator = analytics.NewAggregator()
			publisher = aggregator
			if pg != nil && cfg.Analytics.SnapshotInterval > 0 {
				snapshots = analytics.NewStore(pg, cfg.Analytics.SnapshotRetention)
				if err := snapshots.EnsureSchema(ctx); err != nil {
					slog.Error("analytics snapshots disabled", "error", err)
					snapshots = nil
				} else {
					snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
				}
			}
		}
		collector := analytics.NewCollector(publisher, cfg.Analytics, m)
		collector.Start(ctx)
		defer collector.Close()
		collector.Track("index", analytics.IndexEvent{
			Type:      analytics.EventIndexBuild,
			Scheme:    idx.Scheme().String(),
			Documents: idx.DocCount(),
			Terms:     idx.TermCount(),
			Postings:  idx.PostingCount(),
			Timestamp: time.Now().UTC(),
		})
		tracker = collector
	}

	exec := executor.New(engine, m)
	h := handler.New(exec, engine, queryCache, tracker, cfg.Search)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/index/terms/{term}", h.Term)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	if aggregator != nil {
		analyticsH := analytics.NewHandler(aggregator, snapshots)
		mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
		mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsH.Snapshots)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute)
		limiter.StartCleanup(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
		slog.Info("rate limiting enabled", "requests_per_minute", cfg.Server.RateLimit)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	chain = middleware.RequestID(chain)

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port, map[string]http.Handler{
			"GET /health/live":  checker.LiveHandler(),
			"GET /health/ready": checker.ReadyHandler(),
		})
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if shutdownMetrics != nil {
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "documents", idx.DocCount())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// Wait for in-flight handlers before the deferred closes run.
	<-stopped

	slog.Info("search service stopped")
}
