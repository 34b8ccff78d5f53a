package usage

import (
	"time"

	"github.com/goodtune/screenpulse/internal/category"
	"github.com/goodtune/screenpulse/internal/metrics"
)

// Totals is the per-category rollup of a record set. ManualStudy is
// the day's manually-logged offline study time; it counts toward both
// the study total and the grand total.
type Totals struct {
	ByCategory  map[category.Category]time.Duration
	ManualStudy time.Duration
	StudyTotal  time.Duration
	GrandTotal  time.Duration
}

// Rollup sums foreground time per category and folds the manual study
// ledger into the study and grand totals.
func Rollup(records []Record, manualStudy time.Duration) Totals {
	totals := Totals{
		ByCategory:  make(map[category.Category]time.Duration),
		ManualStudy: manualStudy,
	}

	for _, r := range records {
		totals.ByCategory[r.Category] += r.Foreground
		totals.GrandTotal += r.Foreground
	}

	totals.StudyTotal = totals.ByCategory[category.Study] + manualStudy
	totals.GrandTotal += manualStudy

	for cat, d := range totals.ByCategory {
		metrics.CategoryMinutes.WithLabelValues(string(cat)).Set(d.Minutes())
	}

	return totals
}

// Percent returns the category's share of the grand total in [0, 1].
// The denominator is floored at one millisecond so an all-zero day
// yields zero percentages instead of a division error.
func (t Totals) Percent(c category.Category) float64 {
	total := t.GrandTotal
	if c == category.Study {
		// Manual study is attributed to the study share.
		return t.share(t.StudyTotal, total)
	}
	return t.share(t.ByCategory[c], total)
}

func (t Totals) share(part, total time.Duration) float64 {
	safe := total.Milliseconds()
	if safe < 1 {
		safe = 1
	}
	return float64(part.Milliseconds()) / float64(safe)
}

// MostUsed returns the record with the highest foreground duration.
// The boolean is false when the list is empty or nothing was used;
// callers render that as an explicit "none".
func MostUsed(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	// Records arrive sorted descending, so the first entry is the
	// maximum; ties resolve to the earliest catalog entry.
	top := records[0]
	for _, r := range records {
		if r.Foreground > top.Foreground {
			top = r
		}
	}
	if top.Foreground <= 0 {
		return Record{}, false
	}
	return top, true
}
