// Command relayd runs the Scheduler API server alongside its background
// maintenance loops: lease reconciliation and terminal-job retention.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/api"
	"github.com/nineoclock/relay/client"
	"github.com/nineoclock/relay/hint"
	"github.com/nineoclock/relay/internal/config"
	rsql "github.com/nineoclock/relay/sql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

func main() {
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	retentionAfter := flag.Duration("retention-after", 72*time.Hour, "delete terminal jobs older than this")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sqlDB, err := sql.Open("sqlite", cfg.StorageDSN)
	if err != nil {
		logger.Error("failed to open storage", "err", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := rsql.InitDB(ctx, db); err != nil {
		logger.Error("failed to initialize schema", "err", err)
		os.Exit(1)
	}

	store := rsql.NewStore(db)
	cleaner := rsql.NewCleaner(db)
	h := hint.New(cfg.HintCapacity)
	engine := relay.NewEngine(store, h, cfg.Backoff, logger)

	reconciler := client.NewReconciler(engine, &client.ReconcilerConfig{
		Interval: cfg.ReconcileInterval,
		Limit:    0,
	}, logger)
	if err := reconciler.Start(ctx); err != nil {
		logger.Error("failed to start reconciler", "err", err)
		os.Exit(1)
	}

	retention := client.NewRetentionWorker(cleaner, &client.RetentionConfig{
		Before:   true,
		Delta:    *retentionAfter,
		Interval: time.Hour,
	}, logger)
	if err := retention.Start(ctx); err != nil {
		logger.Error("failed to start retention worker", "err", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(engine),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting relay server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	if err := reconciler.Stop(10 * time.Second); err != nil {
		logger.Error("reconciler stop failed", "err", err)
	}
	if err := retention.Stop(10 * time.Second); err != nil {
		logger.Error("retention worker stop failed", "err", err)
	}

	logger.Info("relay server exited")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
