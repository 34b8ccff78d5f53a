package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/export"
	"github.com/goodtune/screenpulse/internal/usage"
	"github.com/goodtune/screenpulse/internal/window"
)

var (
	reportLimit int
	reportOut   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a usage report as PDF",
	Long:  `Build a bounded usage report for the selected window and write it as a PDF document.`,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0, "Maximum rows in the report (default from config)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Output file (default <output_dir>/screenpulse-<range>-<date>.pdf)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	r, err := window.ParseRange(rangeFlag)
	if err != nil {
		return err
	}

	limit := reportLimit
	if limit <= 0 {
		limit = cfg.Report.Limit
	}

	logger := quietLogger()
	ctx := context.Background()
	now := clk.Now()
	w := window.Resolve(r, now)

	f, err := openFeed(cfg, logger)
	if err != nil {
		return err
	}

	records, err := usage.NewMerger(f, f, f, logger).Merge(ctx, w)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	rows := usage.BuildReport(records, limit)

	out := reportOut
	if out == "" {
		name := fmt.Sprintf("screenpulse-%s-%s.pdf", r, now.Format("2006-01-02"))
		out = filepath.Join(cfg.Report.OutputDir, name)
	}

	title := fmt.Sprintf("%s Usage Report", titleCase(string(r)))
	if err := export.NewPDFSink(out, logger).Write(ctx, title, now, rows); err != nil {
		return fmt.Errorf("report export failed: %w", err)
	}

	fmt.Printf("Report written: %s (%d rows)\n", out, len(rows))
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
