package ledger

import (
	"context"
	"time"

	"github.com/goodtune/screenpulse/internal/metrics"
	"github.com/goodtune/screenpulse/internal/storage"
	"github.com/goodtune/screenpulse/internal/window"
	"github.com/rs/zerolog"
)

// Sweeper removes day-scoped counters once they fall outside the
// retention window. The engine itself never purges stale keys; the
// sweeper is an optional background collaborator started by the watch
// command.
type Sweeper struct {
	counters      storage.CounterStore
	retentionDays int
	sweepTime     time.Time // only hour and minute are used
	clock         window.Clock
	logger        zerolog.Logger
	stopChan      chan struct{}
}

// NewSweeper creates a retention sweeper. sweepTime is HH:MM.
func NewSweeper(counters storage.CounterStore, retentionDays int, sweepTime string, logger zerolog.Logger) (*Sweeper, error) {
	parsedTime, err := time.Parse("15:04", sweepTime)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		counters:      counters,
		retentionDays: retentionDays,
		sweepTime:     parsedTime,
		clock:         window.RealClock{},
		logger:        logger.With().Str("component", "retention-sweeper").Logger(),
		stopChan:      make(chan struct{}),
	}, nil
}

// Start begins the sweeper loop.
func (s *Sweeper) Start() {
	go s.run()
	s.logger.Info().
		Int("retention_days", s.retentionDays).
		Str("sweep_time", s.sweepTime.Format("15:04")).
		Msg("Counter retention sweeper started")
}

// Stop stops the sweeper.
func (s *Sweeper) Stop() {
	close(s.stopChan)
	s.logger.Info().Msg("Counter retention sweeper stopped")
}

func (s *Sweeper) run() {
	for {
		nextSweep := s.calculateNextSweep()
		waitDuration := time.Until(nextSweep)

		s.logger.Info().
			Time("next_sweep", nextSweep).
			Dur("wait_duration", waitDuration).
			Msg("Scheduled next retention sweep")

		select {
		case <-time.After(waitDuration):
			s.Sweep(context.Background(), s.clock.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *Sweeper) calculateNextSweep() time.Time {
	now := s.clock.Now()

	todaySweep := time.Date(
		now.Year(), now.Month(), now.Day(),
		s.sweepTime.Hour(), s.sweepTime.Minute(), 0, 0,
		now.Location(),
	)

	if now.After(todaySweep) {
		return todaySweep.AddDate(0, 0, 1)
	}

	return todaySweep
}

// Sweep deletes counters whose day of year is more than the retention
// period behind now. Counter keys carry no year, so early in a year
// the retention window wraps into the previous year; sweeping is
// skipped then rather than risk deleting keys that are still live.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	cutoff := now.YearDay() - s.retentionDays
	if cutoff < 1 {
		s.logger.Debug().
			Int("day_of_year", now.YearDay()).
			Msg("Retention window wraps the year boundary, skipping sweep")
		return
	}

	deleted, err := s.counters.DeleteDaysBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sweep stale counters")
		return
	}

	metrics.CountersSwept.Add(float64(deleted))
	s.logger.Info().
		Int("deleted", deleted).
		Int("cutoff_day", cutoff).
		Msg("Retention sweep complete")
}
