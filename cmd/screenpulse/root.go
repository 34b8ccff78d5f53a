package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/feed"
	"github.com/goodtune/screenpulse/internal/ledger"
	"github.com/goodtune/screenpulse/internal/storage"
	"github.com/goodtune/screenpulse/internal/storage/bolt"
	"github.com/goodtune/screenpulse/internal/storage/redis"
	"github.com/goodtune/screenpulse/internal/window"
)

var (
	version    = "dev"
	configPath string
	rangeFlag  string

	// clk is the command clock; tests swap in a window.TestClock to
	// pin "today".
	clk window.Clock = window.RealClock{}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screenpulse",
	Short: "ScreenPulse - Device usage aggregation and categorization engine",
	Long: `ScreenPulse merges device usage telemetry (aggregate stats, transition
events, and the installed-app catalog) into categorized per-application
records, tracks study and screen-time goals, and exports usage reports.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to dashboard when no subcommand is provided
		return runDashboard(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/screenpulse/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&rangeFlag, "range", "r", "daily", "Aggregation window (daily, weekly, monthly)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// quietLogger is used by one-shot read commands so log output does not
// interleave with the printed result.
func quietLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
}

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "", "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func openLedger(cfg *config.Config, store storage.Store, logger zerolog.Logger) *ledger.Ledger {
	return ledger.New(
		store.Counters(),
		store.Settings(),
		logger,
		ledger.WithDefaults(cfg.Goals.StudyTargetMinutes, cfg.Goals.MediaLimitMinutes),
	)
}

func openFeed(cfg *config.Config, logger zerolog.Logger) (*feed.Feed, error) {
	f, err := feed.Open(cfg.Feed.SnapshotPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage snapshot: %w", err)
	}
	if !f.Authorized() {
		return nil, fmt.Errorf("usage access not granted in snapshot %s", cfg.Feed.SnapshotPath)
	}
	return f, nil
}
