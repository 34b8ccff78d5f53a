// Package feed loads usage telemetry from device snapshot files and
// notification streams, exposing it through the provider interfaces
// the merge engine consumes.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/goodtune/screenpulse/internal/category"
	"github.com/goodtune/screenpulse/internal/usage"
	"github.com/goodtune/screenpulse/internal/window"
)

// iconCacheSize bounds the resolved-icon cache. Device catalogs rarely
// exceed a few hundred entries.
const iconCacheSize = 512

// snapshotFile is the on-disk snapshot format. Timestamps are Unix
// milliseconds in the device's local time.
type snapshotFile struct {
	Granted bool                        `json:"granted"`
	Stats   map[string]snapshotAppStats `json:"stats"`
	Events  []snapshotEvent             `json:"events"`
	Catalog []snapshotCatalogEntry      `json:"catalog"`
}

type snapshotAppStats struct {
	ForegroundMs int64 `json:"foreground_ms"`
	LastUsedMs   int64 `json:"last_used_ms"`
}

type snapshotEvent struct {
	AppID       string `json:"app_id"`
	Type        string `json:"type"`
	TimestampMs int64  `json:"timestamp_ms"`
}

type snapshotCatalogEntry struct {
	AppID        string `json:"app_id"`
	Label        string `json:"label"`
	Icon         string `json:"icon"`
	CategoryHint string `json:"category_hint"`
}

// Feed serves usage stats, events, and the app catalog from a single
// snapshot file. It implements usage.StatsProvider,
// usage.EventProvider, and usage.CatalogProvider.
type Feed struct {
	path     string
	snapshot snapshotFile
	icons    *lru.Cache[string, string]
	logger   zerolog.Logger
}

// Open reads and parses the snapshot at path.
func Open(path string, logger zerolog.Logger) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	icons, err := lru.New[string, string](iconCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}

	logger.Debug().
		Str("path", path).
		Int("stats", len(snap.Stats)).
		Int("events", len(snap.Events)).
		Int("catalog", len(snap.Catalog)).
		Msg("Snapshot loaded")

	return &Feed{
		path:     path,
		snapshot: snap,
		icons:    icons,
		logger:   logger.With().Str("component", "feed").Logger(),
	}, nil
}

// Authorized reports whether the device granted usage access when the
// snapshot was captured. An unauthorized snapshot still parses, but
// its stats map is empty and merges over it are meaningless.
func (f *Feed) Authorized() bool {
	return f.snapshot.Granted
}

// AggregateStats returns per-app foreground totals for apps whose last
// use falls inside the window.
func (f *Feed) AggregateStats(ctx context.Context, w window.Window) (map[string]usage.AppStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]usage.AppStats, len(f.snapshot.Stats))
	for appID, s := range f.snapshot.Stats {
		lastUsed := fromUnixMs(s.LastUsedMs)
		if !w.Contains(lastUsed) {
			continue
		}
		out[appID] = usage.AppStats{
			Foreground: time.Duration(s.ForegroundMs) * time.Millisecond,
			LastUsed:   lastUsed,
		}
	}
	return out, nil
}

// Events returns the snapshot's transition events that fall inside the
// window. Unknown event types pass through; the merge engine ignores
// them.
func (f *Feed) Events(ctx context.Context, w window.Window) ([]usage.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []usage.Event
	for _, e := range f.snapshot.Events {
		at := fromUnixMs(e.TimestampMs)
		if !w.Contains(at) {
			continue
		}
		out = append(out, usage.Event{
			AppID: e.AppID,
			Type:  usage.EventType(e.Type),
			At:    at,
		})
	}
	return out, nil
}

// InstalledApps returns the snapshot catalog.
func (f *Feed) InstalledApps(ctx context.Context) ([]usage.CatalogApp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	apps := make([]usage.CatalogApp, 0, len(f.snapshot.Catalog))
	for _, entry := range f.snapshot.Catalog {
		apps = append(apps, &catalogApp{feed: f, entry: entry})
	}
	return apps, nil
}

// catalogApp resolves label and icon lazily, so a broken entry only
// degrades its own record.
type catalogApp struct {
	feed  *Feed
	entry snapshotCatalogEntry
}

func (a *catalogApp) AppID() string {
	return a.entry.AppID
}

func (a *catalogApp) Label() (string, error) {
	if a.entry.Label == "" {
		return "", fmt.Errorf("no label for %s", a.entry.AppID)
	}
	return a.entry.Label, nil
}

// Icon resolves the entry's icon reference against the snapshot
// directory and verifies the file exists. Resolutions are cached
// across merges.
func (a *catalogApp) Icon() (string, error) {
	if a.entry.Icon == "" {
		return "", fmt.Errorf("no icon for %s", a.entry.AppID)
	}

	if ref, ok := a.feed.icons.Get(a.entry.AppID); ok {
		return ref, nil
	}

	ref := a.entry.Icon
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(filepath.Dir(a.feed.path), ref)
	}
	if _, err := os.Stat(ref); err != nil {
		return "", fmt.Errorf("icon for %s unavailable: %w", a.entry.AppID, err)
	}

	a.feed.icons.Add(a.entry.AppID, ref)
	return ref, nil
}

func (a *catalogApp) CategoryHint() category.Hint {
	if a.entry.CategoryHint == string(category.HintGame) {
		return category.HintGame
	}
	return category.HintNone
}

func fromUnixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
