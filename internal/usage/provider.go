package usage

import (
	"context"

	"github.com/goodtune/screenpulse/internal/category"
	"github.com/goodtune/screenpulse/internal/window"
)

// StatsProvider supplies aggregate foreground stats for a window.
// The returned map may be empty when usage access is not authorized;
// callers must check grant status before invoking a merge.
type StatsProvider interface {
	AggregateStats(ctx context.Context, w window.Window) (map[string]AppStats, error)
}

// EventProvider supplies foreground-transition events for a window.
// The merge engine re-filters events against the window, so providers
// are not trusted on boundary handling.
type EventProvider interface {
	Events(ctx context.Context, w window.Window) ([]Event, error)
}

// CatalogProvider supplies the installed-application catalog.
// Iteration order is arbitrary; merge output is always re-sorted.
type CatalogProvider interface {
	InstalledApps(ctx context.Context) ([]CatalogApp, error)
}

// CatalogApp is one installed application. Label and Icon resolution
// may fail independently per app; such failures degrade the record
// (label falls back to the app ID, icon is dropped) and never abort
// the merge.
type CatalogApp interface {
	AppID() string
	Label() (string, error)
	Icon() (string, error)
	CategoryHint() category.Hint
}
