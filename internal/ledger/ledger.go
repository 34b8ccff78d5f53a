package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/screenpulse/internal/metrics"
	"github.com/goodtune/screenpulse/internal/storage"
	"github.com/rs/zerolog"
)

// Goal threshold defaults, in minutes, used when the settings store
// has never been written.
const (
	DefaultStudyTargetMinutes = 60
	DefaultMediaLimitMinutes  = 120
)

// Ledger maintains day-scoped counters (manual study time, per-app
// notification counts) and goal thresholds. All state lives in the
// injected store; the ledger itself is stateless and safe for
// concurrent use because the store serializes read-modify-write per
// key. A failed store write is returned to the caller and the
// in-memory value is not treated as committed.
type Ledger struct {
	counters storage.CounterStore
	settings storage.SettingsStore
	logger   zerolog.Logger

	defaultStudyTarget int64 // minutes
	defaultMediaLimit  int64 // minutes
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithDefaults overrides the built-in goal defaults (minutes).
func WithDefaults(studyTargetMinutes, mediaLimitMinutes int64) Option {
	return func(l *Ledger) {
		l.defaultStudyTarget = studyTargetMinutes
		l.defaultMediaLimit = mediaLimitMinutes
	}
}

// New creates a ledger over the given stores.
func New(counters storage.CounterStore, settings storage.SettingsStore, logger zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		counters:           counters,
		settings:           settings,
		logger:             logger.With().Str("component", "ledger").Logger(),
		defaultStudyTarget: DefaultStudyTargetMinutes,
		defaultMediaLimit:  DefaultMediaLimitMinutes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordNotification increments the app's notification counter for the
// given day by one. Concurrent calls are additive; each invocation is
// a real +1 and updates are never lost.
func (l *Ledger) RecordNotification(ctx context.Context, appID string, day time.Time) error {
	key := storage.NotificationKey(appID, day.YearDay())
	count, err := l.counters.Increment(ctx, key, 1)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	metrics.NotificationsRecorded.Inc()
	l.logger.Debug().
		Str("app_id", appID).
		Int64("count", count).
		Msg("Recorded notification")
	return nil
}

// NotificationCount returns the app's notification count for the day.
// Counters are created lazily; an unseen day reads as zero.
func (l *Ledger) NotificationCount(ctx context.Context, appID string, day time.Time) (int64, error) {
	count, err := l.counters.Get(ctx, storage.NotificationKey(appID, day.YearDay()))
	if err != nil {
		return 0, fmt.Errorf("notification count: %w", err)
	}
	return count, nil
}

// AdjustManualStudy adds delta (positive or negative) to the day's
// manually-logged study time and returns the new value. The counter
// never goes below zero.
func (l *Ledger) AdjustManualStudy(ctx context.Context, day time.Time, delta time.Duration) (time.Duration, error) {
	key := storage.ManualStudyKey(day.YearDay())
	value, err := l.counters.Increment(ctx, key, delta.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("adjust manual study: %w", err)
	}

	metrics.ManualStudyAdjustments.Inc()
	l.logger.Debug().
		Dur("delta", delta).
		Int64("total_ms", value).
		Msg("Adjusted manual study time")
	return time.Duration(value) * time.Millisecond, nil
}

// ResetManualStudy sets the day's manual study counter back to zero.
func (l *Ledger) ResetManualStudy(ctx context.Context, day time.Time) error {
	if err := l.counters.Set(ctx, storage.ManualStudyKey(day.YearDay()), 0); err != nil {
		return fmt.Errorf("reset manual study: %w", err)
	}
	l.logger.Info().Int("day", day.YearDay()).Msg("Reset manual study time")
	return nil
}

// ManualStudy returns the day's manually-logged study time.
func (l *Ledger) ManualStudy(ctx context.Context, day time.Time) (time.Duration, error) {
	value, err := l.counters.Get(ctx, storage.ManualStudyKey(day.YearDay()))
	if err != nil {
		return 0, fmt.Errorf("manual study: %w", err)
	}
	return time.Duration(value) * time.Millisecond, nil
}

// StudyTarget returns the configured study goal.
func (l *Ledger) StudyTarget(ctx context.Context) (time.Duration, error) {
	minutes, err := l.settings.GetInt64(ctx, storage.KeyStudyGoal, l.defaultStudyTarget)
	if err != nil {
		return 0, fmt.Errorf("study target: %w", err)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// SetStudyTarget persists the study goal in minutes.
func (l *Ledger) SetStudyTarget(ctx context.Context, minutes int64) error {
	if minutes <= 0 {
		return fmt.Errorf("study target must be positive, got %d", minutes)
	}
	return l.settings.PutInt64(ctx, storage.KeyStudyGoal, minutes)
}

// MediaLimit returns the configured media limit.
func (l *Ledger) MediaLimit(ctx context.Context) (time.Duration, error) {
	minutes, err := l.settings.GetInt64(ctx, storage.KeyDailyGoal, l.defaultMediaLimit)
	if err != nil {
		return 0, fmt.Errorf("media limit: %w", err)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// SetMediaLimit persists the media limit in minutes.
func (l *Ledger) SetMediaLimit(ctx context.Context, minutes int64) error {
	if minutes <= 0 {
		return fmt.Errorf("media limit must be positive, got %d", minutes)
	}
	return l.settings.PutInt64(ctx, storage.KeyDailyGoal, minutes)
}

// Goal is a threshold compared against an aggregated duration. Limit
// goals flip the semantic from "reach" to "stay under".
type Goal struct {
	Label   string
	Current time.Duration
	Max     time.Duration
	Limit   bool
}

// Progress is the evaluated state of a goal.
type Progress struct {
	Ratio    float64 // current/max clamped to [0,1]
	Exceeded bool    // limit goals only: current has reached max
}

// GoalProgress computes the progress ratio for a goal.
func GoalProgress(g Goal) Progress {
	var ratio float64
	if g.Max > 0 {
		ratio = float64(g.Current) / float64(g.Max)
	} else if g.Current > 0 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	return Progress{
		Ratio:    ratio,
		Exceeded: g.Limit && g.Current >= g.Max,
	}
}
