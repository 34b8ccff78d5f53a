package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goodtune/screenpulse/internal/storage"
	"github.com/redis/go-redis/v9"
)

type counterStore struct {
	client *redis.Client
}

func (s *counterStore) Get(ctx context.Context, key string) (int64, error) {
	raw, err := s.client.Get(ctx, counterPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter %s: %w", key, err)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s: %w", key, err)
	}
	return value, nil
}

func (s *counterStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	script := redis.NewScript(incrementCounterScript)

	result, err := script.Run(ctx, s.client, []string{counterPrefix + key}, delta).Int64()
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return result, nil
}

func (s *counterStore) Set(ctx context.Context, key string, value int64) error {
	if err := s.client.Set(ctx, counterPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set counter %s: %w", key, err)
	}
	return nil
}

func (s *counterStore) DeleteDaysBefore(ctx context.Context, dayOfYear int) (int, error) {
	var cursor uint64
	deleted := 0

	for {
		keys, next, err := s.client.Scan(ctx, cursor, counterPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan counters: %w", err)
		}

		toDelete := make([]string, 0, len(keys))
		for _, key := range keys {
			day, ok := storage.CounterDay(strings.TrimPrefix(key, counterPrefix))
			if !ok {
				continue
			}
			if day < dayOfYear {
				toDelete = append(toDelete, key)
			}
		}

		if len(toDelete) > 0 {
			n, err := s.client.Del(ctx, toDelete...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete counters: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
