package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface. The engine owns no
// durable state of its own; goals and day-scoped counters live behind
// this contract and are recomputed or re-read on every invocation.
type Store interface {
	Close() error
	Counters() CounterStore
	Settings() SettingsStore
}

// CounterStore manages day-scoped counters. Keys follow the
// "<subject>_<dayOfYear>" convention (e.g. "manual_study_42",
// "notif_com.spotify.music_42"). Implementations must serialize
// read-modify-write per key: concurrent increments to the same key
// must never lose an update. Cross-key ordering is not guaranteed and
// no operation spans multiple keys.
type CounterStore interface {
	// Get returns the counter value, or 0 when the key has never been
	// written. Counters are created lazily; a missing key is not an error.
	Get(ctx context.Context, key string) (int64, error)

	// Increment atomically adds delta (which may be negative) to the
	// counter and floors the result at zero. It returns the new value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// Set overwrites the counter value.
	Set(ctx context.Context, key string, value int64) error

	// DeleteDaysBefore removes counters whose trailing _<dayOfYear>
	// segment is older than the given day of year. Keys without a day
	// suffix are left alone. Returns the number of keys removed.
	DeleteDaysBefore(ctx context.Context, dayOfYear int) (int, error)
}

// SettingsStore manages persisted user settings (goal thresholds,
// display preferences). Reads fall back to the supplied default when
// the key has never been written.
type SettingsStore interface {
	GetInt64(ctx context.Context, key string, def int64) (int64, error)
	PutInt64(ctx context.Context, key string, value int64) error
	GetBool(ctx context.Context, key string, def bool) (bool, error)
	PutBool(ctx context.Context, key string, value bool) error
}
