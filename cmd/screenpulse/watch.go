package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/feed"
	"github.com/goodtune/screenpulse/internal/ledger"
	"github.com/goodtune/screenpulse/internal/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the notification watcher",
	Long: `Consume the live notification feed, recording per-app daily counters.
Also serves Prometheus metrics and runs the counter retention sweeper
when enabled.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting ScreenPulse watcher")

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().
		Str("type", cfg.Storage.Type).
		Msg("Storage initialized")

	ldg := openLedger(cfg, store, logger)

	// Metrics server
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("Metrics server started")
	}

	// Retention sweeper
	var sweeper *ledger.Sweeper
	if cfg.Retention.Enabled {
		sweeper, err = ledger.NewSweeper(store.Counters(), cfg.Retention.Days, cfg.Retention.SweepTime, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize retention sweeper: %w", err)
		}
		sweeper.Start()
		logger.Info().
			Int("days", cfg.Retention.Days).
			Str("sweep_time", cfg.Retention.SweepTime).
			Msg("Retention sweeper started")
	}

	nr, err := feed.OpenNotifications(cfg.Feed.NotificationsPath, logger)
	if err != nil {
		return err
	}
	defer nr.Close()

	logger.Info().
		Str("path", cfg.Feed.NotificationsPath).
		Msg("Notification feed opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the feed loop on shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received, gracefully stopping...")
		cancel()
	}()

	err = nr.Each(ctx, func(n feed.Notification) error {
		return ldg.RecordNotification(ctx, n.AppID, n.PostedAt)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("Notification feed failed")
	}

	if sweeper != nil {
		sweeper.Stop()
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	logger.Info().Msg("ScreenPulse watcher stopped")
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
