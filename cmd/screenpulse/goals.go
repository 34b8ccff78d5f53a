package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/ledger"
	"github.com/goodtune/screenpulse/internal/storage"
	"github.com/goodtune/screenpulse/internal/usage"
)

var (
	goalStudyMinutes int64
	goalMediaMinutes int64
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show and adjust goals",
	Long:  `Show the configured study target and media limit, change them, and log manual study time.`,
	RunE:  runGoalsShow,
}

var goalsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current goals and today's counters",
	RunE:  runGoalsShow,
}

var goalsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set goal thresholds in minutes",
	Example: `  screenpulse goals set --study 90
  screenpulse goals set --media 180`,
	RunE: runGoalsSet,
}

var goalsLogCmd = &cobra.Command{
	Use:   "log DURATION",
	Short: "Log manual study time for today",
	Long:  `Log offline study time for today. Negative durations subtract, floored at zero.`,
	Example: `  screenpulse goals log 15m
  screenpulse goals log -15m`,
	Args: cobra.ExactArgs(1),
	RunE: runGoalsLog,
}

var goalsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset today's manual study counter",
	RunE:  runGoalsReset,
}

func init() {
	goalsSetCmd.Flags().Int64Var(&goalStudyMinutes, "study", 0, "Study target in minutes")
	goalsSetCmd.Flags().Int64Var(&goalMediaMinutes, "media", 0, "Media limit in minutes")

	goalsCmd.AddCommand(goalsShowCmd)
	goalsCmd.AddCommand(goalsSetCmd)
	goalsCmd.AddCommand(goalsLogCmd)
	goalsCmd.AddCommand(goalsResetCmd)
	rootCmd.AddCommand(goalsCmd)
}

// withLedger loads config, opens storage, and hands a ready ledger to fn.
func withLedger(fn func(ctx context.Context, ldg *ledger.Ledger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func(s storage.Store) { _ = s.Close() }(store)

	return fn(context.Background(), openLedger(cfg, store, quietLogger()))
}

func runGoalsShow(cmd *cobra.Command, args []string) error {
	return withLedger(func(ctx context.Context, ldg *ledger.Ledger) error {
		now := clk.Now()

		study, err := ldg.StudyTarget(ctx)
		if err != nil {
			return err
		}
		limit, err := ldg.MediaLimit(ctx)
		if err != nil {
			return err
		}
		manual, err := ldg.ManualStudy(ctx, now)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Println("GOALS")
		fmt.Printf("Study target:  %s\n", usage.FormatDuration(study))
		fmt.Printf("Media limit:   %s\n", usage.FormatDuration(limit))
		fmt.Printf("Logged today:  %s\n", usage.FormatDuration(manual))
		return nil
	})
}

func runGoalsSet(cmd *cobra.Command, args []string) error {
	if goalStudyMinutes == 0 && goalMediaMinutes == 0 {
		return fmt.Errorf("nothing to set: pass --study and/or --media")
	}

	return withLedger(func(ctx context.Context, ldg *ledger.Ledger) error {
		if goalStudyMinutes != 0 {
			if err := ldg.SetStudyTarget(ctx, goalStudyMinutes); err != nil {
				return err
			}
			fmt.Printf("Study target set to %dm\n", goalStudyMinutes)
		}
		if goalMediaMinutes != 0 {
			if err := ldg.SetMediaLimit(ctx, goalMediaMinutes); err != nil {
				return err
			}
			fmt.Printf("Media limit set to %dm\n", goalMediaMinutes)
		}
		return nil
	})
}

func runGoalsLog(cmd *cobra.Command, args []string) error {
	delta, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[0], err)
	}

	return withLedger(func(ctx context.Context, ldg *ledger.Ledger) error {
		value, err := ldg.AdjustManualStudy(ctx, clk.Now(), delta)
		if err != nil {
			return err
		}
		fmt.Printf("Logged study today: %s\n", usage.FormatDuration(value))
		return nil
	})
}

func runGoalsReset(cmd *cobra.Command, args []string) error {
	return withLedger(func(ctx context.Context, ldg *ledger.Ledger) error {
		if err := ldg.ResetManualStudy(ctx, clk.Now()); err != nil {
			return err
		}
		fmt.Println("Manual study counter reset")
		return nil
	})
}
