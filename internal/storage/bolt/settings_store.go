package bolt

import (
	"context"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"
)

type settingsStore struct {
	db *bbolt.DB
}

func (s *settingsStore) GetInt64(ctx context.Context, key string, def int64) (int64, error) {
	value := def
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSettings))
		if b == nil {
			return fmt.Errorf("settings bucket missing")
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		parsed, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("parse setting %s: %w", key, err)
		}
		value = parsed
		return nil
	})
	return value, err
}

func (s *settingsStore) PutInt64(ctx context.Context, key string, value int64) error {
	return s.put(ctx, key, strconv.FormatInt(value, 10))
}

func (s *settingsStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	value := def
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSettings))
		if b == nil {
			return fmt.Errorf("settings bucket missing")
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		parsed, err := strconv.ParseBool(string(raw))
		if err != nil {
			return fmt.Errorf("parse setting %s: %w", key, err)
		}
		value = parsed
		return nil
	})
	return value, err
}

func (s *settingsStore) PutBool(ctx context.Context, key string, value bool) error {
	return s.put(ctx, key, strconv.FormatBool(value))
}

func (s *settingsStore) put(ctx context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketSettings))
		if b == nil {
			return fmt.Errorf("settings bucket missing")
		}
		return b.Put([]byte(key), []byte(value))
	})
}
