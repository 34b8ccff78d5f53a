package usage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodtune/screenpulse/internal/category"
	"github.com/goodtune/screenpulse/internal/metrics"
	"github.com/goodtune/screenpulse/internal/window"
	"github.com/rs/zerolog"
)

// Merger combines the three telemetry feeds into unified usage
// records. It holds no state between runs; every Merge recomputes the
// full record set from the providers.
type Merger struct {
	stats   StatsProvider
	events  EventProvider
	catalog CatalogProvider
	logger  zerolog.Logger
}

// NewMerger creates a merge engine over the given providers.
func NewMerger(stats StatsProvider, events EventProvider, catalog CatalogProvider, logger zerolog.Logger) *Merger {
	return &Merger{
		stats:   stats,
		events:  events,
		catalog: catalog,
		logger:  logger.With().Str("component", "merge").Logger(),
	}
}

// Merge produces one record per installed application for the window,
// sorted descending by foreground duration (ties keep catalog order).
// Apps with zero usage are included. Provider failures abort the merge;
// per-app label/icon lookup failures only degrade the affected record.
func (m *Merger) Merge(ctx context.Context, w window.Window) ([]Record, error) {
	started := time.Now()

	stats, err := m.stats.AggregateStats(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	events, err := m.events.Events(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	opens := countForegroundEvents(events, w)

	apps, err := m.catalog.InstalledApps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed apps: %w", err)
	}

	records := make([]Record, 0, len(apps))
	index := make(map[string]int, len(apps))

	for _, app := range apps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		appID := app.AppID()

		label, err := app.Label()
		if err != nil || label == "" {
			m.logger.Debug().Err(err).Str("app_id", appID).Msg("Label lookup failed, falling back to app ID")
			label = appID
		}

		icon, err := app.Icon()
		if err != nil {
			m.logger.Debug().Err(err).Str("app_id", appID).Msg("Icon lookup failed, record kept without icon")
			icon = ""
		}

		record := Record{
			AppID:    appID,
			Label:    label,
			Opens:    opens[appID],
			IconRef:  icon,
			Category: category.Classify(appID, app.CategoryHint()),
		}
		if st, ok := stats[appID]; ok {
			record.Foreground = st.Foreground
			record.LastUsed = st.LastUsed
		}

		// Duplicate catalog entries collapse to one record. Last write
		// wins, keyed on the app's first position so ordering stays a
		// function of the catalog sequence alone.
		if at, dup := index[appID]; dup {
			records[at] = record
			continue
		}
		index[appID] = len(records)
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Foreground > records[j].Foreground
	})

	metrics.MergesTotal.Inc()
	metrics.MergeDuration.Observe(time.Since(started).Seconds())
	metrics.MergedApps.Set(float64(len(records)))

	m.logger.Debug().
		Int("apps", len(records)).
		Time("window_start", w.Start).
		Time("window_end", w.End).
		Msg("Merged usage records")

	return records, nil
}

// countForegroundEvents tallies transition-to-foreground events per
// app, ignoring anything outside [start, end).
func countForegroundEvents(events []Event, w window.Window) map[string]int {
	opens := make(map[string]int)
	for _, ev := range events {
		if ev.Type != EventForeground {
			continue
		}
		if !w.Contains(ev.At) {
			continue
		}
		opens[ev.AppID]++
	}
	return opens
}
