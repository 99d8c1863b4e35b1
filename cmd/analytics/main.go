// Command analytics starts the standalone analytics aggregation service.
//
// It consumes the query and index-build events searchers publish to Kafka
// when analytics.publish is set, aggregates them in memory (query counts
// per mode, latency percentiles, cache hit rate, syntax errors, top queries
// and terms), optionally snapshots them to PostgreSQL, and serves
// GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-port 8081]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	port := flag.Int("port", 0, "HTTP port, overriding server.port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()
	aggregator := analytics.NewAggregator()

	var snapshots *analytics.Store
	if cfg.Analytics.SnapshotInterval > 0 {
		pg, err := bootstrap.Postgres(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		checker.Register("postgres", health.Ping(pg.Ping, false))
		snapshots = analytics.NewStore(pg, cfg.Analytics.SnapshotRetention)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, aggregator.HandleMessage)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started",
		"topic", cfg.Kafka.Topics.AnalyticsEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	analyticsHandler := analytics.NewHandler(aggregator, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	chain = middleware.RequestID(chain)

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
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// Wait for in-flight handlers before the deferred closes run.
	<-stopped

	slog.Info("analytics service stopped")
}
