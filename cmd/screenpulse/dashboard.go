package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/screenpulse/internal/category"
	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/ledger"
	"github.com/goodtune/screenpulse/internal/usage"
	"github.com/goodtune/screenpulse/internal/window"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the usage dashboard",
	Long:  `Show categorized screen time, the most-used app, and goal progress for the selected window.`,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// categoryOrder fixes the display order of the breakdown.
var categoryOrder = []category.Category{
	category.Productive,
	category.Study,
	category.Game,
	category.Unproductive,
	category.Neutral,
}

func runDashboard(cmd *cobra.Command, args []string) error {
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
	manual, err := ldg.ManualStudy(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to read manual study counter: %w", err)
	}
	totals := usage.Rollup(records, manual)

	studyTarget, err := ldg.StudyTarget(ctx)
	if err != nil {
		return fmt.Errorf("failed to read study goal: %w", err)
	}
	mediaLimit, err := ldg.MediaLimit(ctx)
	if err != nil {
		return fmt.Errorf("failed to read media limit: %w", err)
	}

	printDashboard(r, w, records, totals, studyTarget, mediaLimit)
	return nil
}

func printDashboard(r window.Range, w window.Window, records []usage.Record, totals usage.Totals, studyTarget, mediaLimit time.Duration) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Printf("SCREEN TIME (%s)\n", strings.ToUpper(string(r)))
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Window:     %s - %s\n", w.Start.Format("2006-01-02 15:04"), w.End.Format("2006-01-02 15:04"))
	fmt.Printf("Total:      %s\n", usage.FormatDuration(totals.GrandTotal))
	if totals.ManualStudy > 0 {
		fmt.Printf("            includes %s logged study time\n", usage.FormatDuration(totals.ManualStudy))
	}
	fmt.Println()

	for _, c := range categoryOrder {
		d := totals.ByCategory[c]
		if c == category.Study {
			d = totals.StudyTotal
		}
		fmt.Printf("%-13s %8s  %5.1f%%\n", c, usage.FormatDuration(d), totals.Percent(c)*100)
	}
	fmt.Println()

	if top, ok := usage.MostUsed(records); ok {
		fmt.Printf("Most used:  %s (%s, %d opens)\n", top.Label, usage.FormatDuration(top.Foreground), top.Opens)
	} else {
		fmt.Println("Most used:  (no usage recorded)")
	}
	fmt.Println()

	for _, g := range dashboardGoals(totals, studyTarget, mediaLimit) {
		printGoalBar(g)
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}

// dashboardGoals builds the two goal bars. The media limit tracks
// unproductive time only; study time, logged or on-screen, never
// counts against it.
func dashboardGoals(totals usage.Totals, studyTarget, mediaLimit time.Duration) []ledger.Goal {
	return []ledger.Goal{
		{Label: "Study target", Current: totals.StudyTotal, Max: studyTarget},
		{Label: "Media limit", Current: totals.ByCategory[category.Unproductive], Max: mediaLimit, Limit: true},
	}
}

// printGoalBar renders one goal as a 20-cell progress bar. Reach goals
// turn green when met; limit goals turn red when exceeded.
func printGoalBar(g ledger.Goal) {
	p := ledger.GoalProgress(g)

	filled := int(p.Ratio * 20)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)

	var c *color.Color
	switch {
	case p.Exceeded:
		c = color.New(color.FgRed, color.Bold)
	case !g.Limit && p.Ratio >= 1:
		c = color.New(color.FgGreen, color.Bold)
	default:
		c = color.New(color.FgYellow)
	}

	fmt.Printf("%-13s ", g.Label)
	c.Printf("%s", bar)
	fmt.Printf(" %s / %s", usage.FormatDuration(g.Current), usage.FormatDuration(g.Max))
	if p.Exceeded {
		c.Printf("  EXCEEDED")
	}
	fmt.Println()
}
