package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)

	// miniredis.Addr() returns "host:port", so Port stays zero.
	cfg := config.RedisConfig{
		Host:         mr.Addr(),
		Port:         0,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open Redis store: %v", err)
	}

	return store
}

func TestCounterStore_Increment(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	counters := store.Counters()
	key := storage.NotificationKey("com.example.chat", 42)

	value, err := counters.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get on missing key failed: %v", err)
	}
	if value != 0 {
		t.Errorf("Expected missing counter to read 0, got %d", value)
	}

	value, err = counters.Increment(ctx, key, 1)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if value != 1 {
		t.Errorf("Expected 1, got %d", value)
	}

	value, err = counters.Increment(ctx, key, 4)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if value != 5 {
		t.Errorf("Expected 5, got %d", value)
	}
}

func TestCounterStore_IncrementClampsAtZero(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	counters := store.Counters()
	key := storage.ManualStudyKey(200)

	if err := counters.Set(ctx, key, 900000); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := counters.Increment(ctx, key, -1800000)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if value != 0 {
		t.Errorf("Expected clamp to 0, got %d", value)
	}

	value, err = counters.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != 0 {
		t.Errorf("Expected persisted 0, got %d", value)
	}
}

func TestCounterStore_ConcurrentIncrements(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	counters := store.Counters()
	key := storage.NotificationKey("com.example.chat", 7)

	const writers = 3
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			if _, err := counters.Increment(ctx, key, 1); err != nil {
				t.Errorf("Increment failed: %v", err)
			}
		}()
	}
	wg.Wait()

	value, err := counters.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != writers {
		t.Errorf("Expected %d after concurrent increments, got %d", writers, value)
	}
}

func TestCounterStore_DeleteDaysBefore(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	counters := store.Counters()

	if err := counters.Set(ctx, storage.ManualStudyKey(10), 100); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := counters.Set(ctx, storage.NotificationKey("com.example.chat", 20), 3); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := counters.Set(ctx, storage.ManualStudyKey(60), 500); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	deleted, err := counters.DeleteDaysBefore(ctx, 60)
	if err != nil {
		t.Fatalf("DeleteDaysBefore failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	value, err := counters.Get(ctx, storage.ManualStudyKey(60))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != 500 {
		t.Errorf("Expected surviving counter 500, got %d", value)
	}
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	settings := store.Settings()

	value, err := settings.GetInt64(ctx, storage.KeyDailyGoal, 120)
	if err != nil {
		t.Fatalf("GetInt64 failed: %v", err)
	}
	if value != 120 {
		t.Errorf("Expected default 120, got %d", value)
	}

	if err := settings.PutInt64(ctx, storage.KeyDailyGoal, 45); err != nil {
		t.Fatalf("PutInt64 failed: %v", err)
	}
	value, err = settings.GetInt64(ctx, storage.KeyDailyGoal, 120)
	if err != nil {
		t.Fatalf("GetInt64 failed: %v", err)
	}
	if value != 45 {
		t.Errorf("Expected 45, got %d", value)
	}

	dark, err := settings.GetBool(ctx, "is_dark_theme", true)
	if err != nil {
		t.Fatalf("GetBool failed: %v", err)
	}
	if !dark {
		t.Errorf("Expected default true")
	}
}
