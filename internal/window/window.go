package window

import (
	"fmt"
	"strings"
	"time"
)

// Range selects the aggregation window.
type Range string

const (
	Daily   Range = "daily"
	Weekly  Range = "weekly"
	Monthly Range = "monthly"
)

// ParseRange parses a range selector from user input.
func ParseRange(s string) (Range, error) {
	switch Range(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown range %q (want daily, weekly or monthly)", s)
	}
}

// Window is a half-open [Start, End) instant pair. It is computed
// fresh on every engine invocation and never persisted.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Resolve computes the window for a range selector anchored at now.
// The start is always truncated to local midnight; the end is now
// exactly. Monthly subtraction is calendar-aware: one month back from
// a day the prior month does not have normalizes forward per
// time.AddDate (March 31 resolves to an early-March start).
func Resolve(r Range, now time.Time) Window {
	var anchor time.Time
	switch r {
	case Weekly:
		anchor = now.AddDate(0, 0, -7)
	case Monthly:
		anchor = now.AddDate(0, -1, 0)
	default:
		anchor = now
	}

	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: now}
}
