package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-monitor/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-monitor/internal/adapter/kafka"
	"github.com/couchcryptid/quake-monitor/internal/adapter/usgs"
	"github.com/couchcryptid/quake-monitor/internal/config"
	"github.com/couchcryptid/quake-monitor/internal/dedup"
	"github.com/couchcryptid/quake-monitor/internal/observability"
	"github.com/couchcryptid/quake-monitor/internal/pipeline"
	"github.com/couchcryptid/quake-monitor/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	feed, err := usgs.ParseFeedType(cfg.USGSFeed)
	if err != nil {
		logger.Error("invalid feed", "error", err)
		os.Exit(1)
	}

	ring, err := dedup.NewRing(cfg.DedupCapacity)
	if err != nil {
		logger.Error("invalid dedup capacity", "error", err)
		os.Exit(1)
	}

	fetcher := usgs.NewClient(feed, cfg.USGSTimeout, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	hub := ws.NewHub()
	broadcaster := ws.NewBroadcaster(hub, logger, ws.DefaultRecentSize)

	mon := pipeline.NewMonitor(fetcher, cfg.EventFilter(), ring,
		[]pipeline.EventPublisher{writer, broadcaster}, logger, metrics, cfg.PollInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, mon, hub, broadcaster, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the polling monitor.
	go func() {
		if err := mon.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	logger.Info("quake monitor started", "feed", feed, "poll_interval", cfg.PollInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
