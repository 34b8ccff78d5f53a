package bolt

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goodtune/screenpulse/internal/storage"
	"go.etcd.io/bbolt"
)

type counterStore struct {
	db *bbolt.DB
}

func (s *counterStore) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketCounters))
		if b == nil {
			return fmt.Errorf("counters bucket missing")
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil // lazily-created counters default to zero
		}
		parsed, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("parse counter %s: %w", key, err)
		}
		value = parsed
		return nil
	})
	return value, err
}

// Increment runs inside a single update transaction, which bbolt
// serializes, so the read-modify-write is atomic per key.
func (s *counterStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	var value int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketCounters))
		if b == nil {
			return fmt.Errorf("counters bucket missing")
		}
		if raw := b.Get([]byte(key)); raw != nil {
			parsed, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("parse counter %s: %w", key, err)
			}
			value = parsed
		}
		value += delta
		if value < 0 {
			value = 0
		}
		return b.Put([]byte(key), []byte(strconv.FormatInt(value, 10)))
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *counterStore) Set(ctx context.Context, key string, value int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketCounters))
		if b == nil {
			return fmt.Errorf("counters bucket missing")
		}
		return b.Put([]byte(key), []byte(strconv.FormatInt(value, 10)))
	})
}

func (s *counterStore) DeleteDaysBefore(ctx context.Context, dayOfYear int) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketCounters))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			day, ok := storage.CounterDay(string(k))
			if !ok {
				continue
			}
			if day < dayOfYear {
				if err := c.Delete(); err != nil {
					return err
				}
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}
