package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/screenpulse/internal/config"
	"github.com/goodtune/screenpulse/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Key namespaces. Counters and settings live in separate prefixes so
// the retention sweep can scan counters without touching settings.
const (
	counterPrefix = "screenpulse:counter:"
	settingPrefix = "screenpulse:setting:"
)

// Store implements the storage.Store interface using Redis.
type Store struct {
	client   *redis.Client
	counters *counterStore
	settings *settingsStore
}

// Open creates a new Redis-backed storage instance.
func Open(cfg config.RedisConfig) (*Store, error) {
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{
		client:   client,
		counters: &counterStore{client: client},
		settings: &settingsStore{client: client},
	}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Counters returns the CounterStore implementation.
func (s *Store) Counters() storage.CounterStore {
	return s.counters
}

// Settings returns the SettingsStore implementation.
func (s *Store) Settings() storage.SettingsStore {
	return s.settings
}
