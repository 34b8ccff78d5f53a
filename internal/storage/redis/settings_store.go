package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type settingsStore struct {
	client *redis.Client
}

func (s *settingsStore) GetInt64(ctx context.Context, key string, def int64) (int64, error) {
	raw, err := s.client.Get(ctx, settingPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get setting %s: %w", key, err)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return value, nil
}

func (s *settingsStore) PutInt64(ctx context.Context, key string, value int64) error {
	if err := s.client.Set(ctx, settingPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

func (s *settingsStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, err := s.client.Get(ctx, settingPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get setting %s: %w", key, err)
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return value, nil
}

func (s *settingsStore) PutBool(ctx context.Context, key string, value bool) error {
	if err := s.client.Set(ctx, settingPrefix+key, strconv.FormatBool(value), 0).Err(); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}
