package usage

import (
	"fmt"
	"time"

	"github.com/goodtune/screenpulse/internal/category"
)

// ReportRow is one exported line of a usage report.
type ReportRow struct {
	Label      string
	Category   category.Category
	Foreground time.Duration
	Opens      int
}

// BuildReport projects the highest-usage subset of an already-sorted
// record list into report rows. No re-sorting happens here; the input
// order is the export order.
func BuildReport(records []Record, limit int) []ReportRow {
	if limit < 0 {
		limit = 0
	}
	if limit > len(records) {
		limit = len(records)
	}

	rows := make([]ReportRow, 0, limit)
	for _, r := range records[:limit] {
		rows = append(rows, ReportRow{
			Label:      r.Label,
			Category:   r.Category,
			Foreground: r.Foreground,
			Opens:      r.Opens,
		})
	}
	return rows
}

// FormatDuration renders a duration the way the dashboard shows it:
// "3h 24m", or "24m" under an hour.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
