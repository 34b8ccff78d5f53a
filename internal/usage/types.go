package usage

import (
	"time"

	"github.com/goodtune/screenpulse/internal/category"
)

// AppStats is the aggregate usage a stats provider reports for one
// application within a window.
type AppStats struct {
	Foreground time.Duration
	LastUsed   time.Time
}

// EventType identifies a foreground-transition event kind.
type EventType string

const (
	// EventForeground marks a transition of an app to the foreground.
	// It is the only event type the merge engine consumes; providers
	// may emit others and they are ignored.
	EventForeground EventType = "foreground"

	// EventBackground marks a transition away from the foreground.
	EventBackground EventType = "background"
)

// Event is a single foreground-transition event.
type Event struct {
	AppID string
	Type  EventType
	At    time.Time
}

// Record is the unified per-application usage record produced by a
// merge: one per distinct app ID, category assigned exactly once.
type Record struct {
	AppID      string
	Label      string
	Foreground time.Duration
	LastUsed   time.Time // zero if never used in the window
	Opens      int
	IconRef    string // opaque handle; empty when resolution failed
	Category   category.Category
}
