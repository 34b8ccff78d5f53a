package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goodtune/screenpulse/internal/storage/bolt"
	"github.com/goodtune/screenpulse/internal/window"
	"github.com/rs/zerolog"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "ledger.bolt"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return New(store.Counters(), store.Settings(), zerolog.Nop())
}

var testDay = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)

func TestRecordNotificationConcurrent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			if err := l.RecordNotification(ctx, "com.example.chat", testDay); err != nil {
				t.Errorf("record notification: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := l.NotificationCount(ctx, "com.example.chat", testDay)
	if err != nil {
		t.Fatalf("notification count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected exactly 3 notifications, got %d", count)
	}
}

func TestNotificationCountersAreDayScoped(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if err := l.RecordNotification(ctx, "com.example.chat", testDay); err != nil {
		t.Fatalf("record notification: %v", err)
	}

	nextDay := testDay.AddDate(0, 0, 1)
	count, err := l.NotificationCount(ctx, "com.example.chat", nextDay)
	if err != nil {
		t.Fatalf("notification count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected new day to start at 0, got %d", count)
	}
}

func TestAdjustManualStudy(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	value, err := l.AdjustManualStudy(ctx, testDay, 15*time.Minute)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if value != 15*time.Minute {
		t.Errorf("value = %v, want 15m", value)
	}

	value, err = l.AdjustManualStudy(ctx, testDay, 15*time.Minute)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if value != 30*time.Minute {
		t.Errorf("value = %v, want 30m", value)
	}

	// A decrement past zero clamps instead of going negative.
	value, err = l.AdjustManualStudy(ctx, testDay, -2*time.Hour)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if value != 0 {
		t.Errorf("value = %v, want clamp to 0", value)
	}
}

func TestResetManualStudy(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.AdjustManualStudy(ctx, testDay, time.Hour); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if err := l.ResetManualStudy(ctx, testDay); err != nil {
		t.Fatalf("reset: %v", err)
	}

	value, err := l.ManualStudy(ctx, testDay)
	if err != nil {
		t.Fatalf("manual study: %v", err)
	}
	if value != 0 {
		t.Errorf("value = %v, want 0 after reset", value)
	}
}

func TestGoalDefaults(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	study, err := l.StudyTarget(ctx)
	if err != nil {
		t.Fatalf("study target: %v", err)
	}
	if study != 60*time.Minute {
		t.Errorf("study target = %v, want 60m default", study)
	}

	media, err := l.MediaLimit(ctx)
	if err != nil {
		t.Fatalf("media limit: %v", err)
	}
	if media != 120*time.Minute {
		t.Errorf("media limit = %v, want 120m default", media)
	}

	if err := l.SetStudyTarget(ctx, 90); err != nil {
		t.Fatalf("set study target: %v", err)
	}
	study, err = l.StudyTarget(ctx)
	if err != nil {
		t.Fatalf("study target: %v", err)
	}
	if study != 90*time.Minute {
		t.Errorf("study target = %v, want 90m", study)
	}

	if err := l.SetStudyTarget(ctx, 0); err == nil {
		t.Errorf("expected error for non-positive study target")
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name         string
		goal         Goal
		wantRatio    float64
		wantExceeded bool
	}{
		{
			name:         "limit exceeded",
			goal:         Goal{Current: 90 * time.Minute, Max: 60 * time.Minute, Limit: true},
			wantRatio:    1.0,
			wantExceeded: true,
		},
		{
			name:         "target halfway",
			goal:         Goal{Current: 30 * time.Minute, Max: 60 * time.Minute},
			wantRatio:    0.5,
			wantExceeded: false,
		},
		{
			name:         "target overshoot is not exceeded",
			goal:         Goal{Current: 2 * time.Hour, Max: time.Hour},
			wantRatio:    1.0,
			wantExceeded: false,
		},
		{
			name:         "limit at boundary",
			goal:         Goal{Current: time.Hour, Max: time.Hour, Limit: true},
			wantRatio:    1.0,
			wantExceeded: true,
		},
		{
			name:         "zero current",
			goal:         Goal{Current: 0, Max: time.Hour, Limit: true},
			wantRatio:    0,
			wantExceeded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GoalProgress(tt.goal)
			if got.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %f, want %f", got.Ratio, tt.wantRatio)
			}
			if got.Exceeded != tt.wantExceeded {
				t.Errorf("Exceeded = %v, want %v", got.Exceeded, tt.wantExceeded)
			}
		})
	}
}

func TestSweeperScheduling(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sweep.bolt"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	defer func() { _ = store.Close() }()

	sweeper, err := NewSweeper(store.Counters(), 90, "02:30", zerolog.Nop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	// Past today's sweep time: next run is tomorrow.
	sweeper.clock = &window.TestClock{CurrentTime: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)}
	next := sweeper.calculateNextSweep()
	want := time.Date(2024, time.March, 16, 2, 30, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("next sweep = %v, want %v", next, want)
	}

	// Before today's sweep time: next run is later today.
	sweeper.clock = &window.TestClock{CurrentTime: time.Date(2024, time.March, 15, 1, 0, 0, 0, time.Local)}
	next = sweeper.calculateNextSweep()
	want = time.Date(2024, time.March, 15, 2, 30, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("next sweep = %v, want %v", next, want)
	}
}

func TestSweeperSkipsYearWrap(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sweep.bolt"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	defer func() { _ = store.Close() }()

	counters := store.Counters()
	ctx := context.Background()

	l := New(counters, store.Settings(), zerolog.Nop())
	day := time.Date(2024, time.December, 1, 12, 0, 0, 0, time.Local)
	if _, err := l.AdjustManualStudy(ctx, day, time.Hour); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	sweeper, err := NewSweeper(counters, 90, "00:00", zerolog.Nop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	// Early January: the 90-day window reaches into last year, so the
	// sweep must not run.
	sweeper.Sweep(ctx, time.Date(2025, time.January, 5, 1, 0, 0, 0, time.Local))

	value, err := l.ManualStudy(ctx, day)
	if err != nil {
		t.Fatalf("manual study: %v", err)
	}
	if value != time.Hour {
		t.Fatalf("expected counter untouched across year wrap, got %v", value)
	}
}

func TestSweeperDeletesStaleDays(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sweep.bolt"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	defer func() { _ = store.Close() }()

	counters := store.Counters()
	ctx := context.Background()
	l := New(counters, store.Settings(), zerolog.Nop())

	old := time.Date(2024, time.February, 1, 12, 0, 0, 0, time.Local)
	recent := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.Local)
	if err := l.RecordNotification(ctx, "com.example.chat", old); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := l.RecordNotification(ctx, "com.example.chat", recent); err != nil {
		t.Fatalf("record: %v", err)
	}

	sweeper, err := NewSweeper(counters, 90, "00:00", zerolog.Nop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	sweeper.Sweep(ctx, time.Date(2024, time.June, 2, 1, 0, 0, 0, time.Local))

	count, err := l.NotificationCount(ctx, "com.example.chat", old)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("stale counter survived sweep: %d", count)
	}

	count, err = l.NotificationCount(ctx, "com.example.chat", recent)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("recent counter lost in sweep: %d", count)
	}
}
