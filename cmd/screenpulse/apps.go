package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/usage"
	"github.com/goodtune/screenpulse/internal/window"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List per-application usage",
	Long:  `List every cataloged application with its foreground time, open count, category, and today's notification count.`,
	RunE:  runApps,
}

func init() {
	rootCmd.AddCommand(appsCmd)
}

func runApps(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	r, err := window.ParseRange(rangeFlag)
	if err != nil {
		return err
	}

	logger := quietLogger()
	ctx := context.Background()
	now := clk.Now()
	w := window.Resolve(r, now)

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	f, err := openFeed(cfg, logger)
	if err != nil {
		return err
	}

	records, err := usage.NewMerger(f, f, f, logger).Merge(ctx, w)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	ldg := openLedger(cfg, store, logger)

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("%-28s %-13s %9s %6s %7s\n", "APP", "CATEGORY", "TIME", "OPENS", "NOTIFS")

	for _, rec := range records {
		notifs, err := ldg.NotificationCount(ctx, rec.AppID, now)
		if err != nil {
			return fmt.Errorf("failed to read notification counter for %s: %w", rec.AppID, err)
		}

		label := truncateLabel(rec.Label, 28)
		fmt.Printf("%-28s %-13s %9s %6d %7d\n", label, rec.Category, usage.FormatDuration(rec.Foreground), rec.Opens, notifs)
	}

	fmt.Printf("\n%d applications\n", len(records))
	return nil
}

// truncateLabel shortens a label to at most max display cells,
// appending an ellipsis. Labels are user-facing and may contain
// multi-byte characters, so truncation counts runes, not bytes.
func truncateLabel(label string, max int) string {
	runes := []rune(label)
	if len(runes) <= max {
		return label
	}
	return string(runes[:max-3]) + "..."
}
