package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notification is one posted-notification event from the device feed.
type Notification struct {
	AppID    string
	PostedAt time.Time
}

type notificationLine struct {
	AppID      string `json:"app_id"`
	PostedAtMs int64  `json:"posted_at_ms"`
}

// NotificationReader consumes a JSON-lines notification feed. The
// path "-" reads from stdin, which is how a live device pipe is
// attached.
type NotificationReader struct {
	r      io.ReadCloser
	logger zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenNotifications opens the notification feed at path.
func OpenNotifications(path string, logger zerolog.Logger) (*NotificationReader, error) {
	// Stdin is used directly, not wrapped, so cancellation can close
	// it and unblock a pending read.
	var r io.ReadCloser
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open notification feed: %w", err)
		}
		r = f
	}

	return NewNotificationReader(r, logger), nil
}

// NewNotificationReader wraps an already-open feed.
func NewNotificationReader(r io.ReadCloser, logger zerolog.Logger) *NotificationReader {
	return &NotificationReader{
		r:      r,
		logger: logger.With().Str("component", "feed").Logger(),
	}
}

// Each reads the feed line by line, invoking fn for every parsed
// notification until EOF, a callback error, or context cancellation.
// A live feed can sit idle between lines, so cancellation closes the
// underlying reader to unblock the pending read. Malformed lines are
// logged and skipped so one corrupt entry cannot stall the stream.
func (nr *NotificationReader) Each(ctx context.Context, fn func(Notification) error) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = nr.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(nr.r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var nl notificationLine
		if err := json.Unmarshal(line, &nl); err != nil {
			nr.logger.Warn().Err(err).Msg("Skipping malformed notification line")
			continue
		}
		if nl.AppID == "" {
			nr.logger.Warn().Msg("Skipping notification without app id")
			continue
		}

		if err := fn(Notification{AppID: nl.AppID, PostedAt: fromUnixMs(nl.PostedAtMs)}); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("notification feed read failed: %w", err)
	}
	return nil
}

// Close releases the underlying feed. Safe to call more than once;
// cancellation and the caller's deferred Close may race.
func (nr *NotificationReader) Close() error {
	nr.closeOnce.Do(func() { nr.closeErr = nr.r.Close() })
	return nr.closeErr
}
