package feed

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/screenpulse/internal/category"
	"github.com/goodtune/screenpulse/internal/usage"
	"github.com/goodtune/screenpulse/internal/window"
)

func writeSnapshot(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "usage.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func testWindow(t *testing.T) window.Window {
	t.Helper()
	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.Local)
	return window.Window{Start: start, End: start.Add(24 * time.Hour)}
}

func TestOpenRejectsMalformedSnapshot(t *testing.T) {
	path := writeSnapshot(t, t.TempDir(), "{not json")
	if _, err := Open(path, zerolog.Nop()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAggregateStatsFiltersWindow(t *testing.T) {
	w := testWindow(t)
	inside := w.Start.Add(10 * time.Hour)
	before := w.Start.Add(-time.Hour)

	snap := `{
		"granted": true,
		"stats": {
			"com.example.inside":  {"foreground_ms": 600000, "last_used_ms": ` + msString(inside) + `},
			"com.example.outside": {"foreground_ms": 300000, "last_used_ms": ` + msString(before) + `}
		}
	}`
	f, err := Open(writeSnapshot(t, t.TempDir(), snap), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !f.Authorized() {
		t.Fatal("expected authorized snapshot")
	}

	stats, err := f.AggregateStats(context.Background(), w)
	if err != nil {
		t.Fatalf("aggregate stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 app in window, got %d", len(stats))
	}
	s, ok := stats["com.example.inside"]
	if !ok {
		t.Fatal("in-window app missing")
	}
	if s.Foreground != 10*time.Minute {
		t.Errorf("foreground = %v, want 10m", s.Foreground)
	}
	if !s.LastUsed.Equal(inside) {
		t.Errorf("last used = %v, want %v", s.LastUsed, inside)
	}
}

func TestEventsFiltersWindow(t *testing.T) {
	w := testWindow(t)
	inside := w.Start.Add(time.Hour)
	after := w.End.Add(time.Hour)

	snap := `{
		"granted": true,
		"events": [
			{"app_id": "com.example.a", "type": "foreground", "timestamp_ms": ` + msString(inside) + `},
			{"app_id": "com.example.a", "type": "background", "timestamp_ms": ` + msString(inside.Add(time.Minute)) + `},
			{"app_id": "com.example.a", "type": "foreground", "timestamp_ms": ` + msString(after) + `}
		]
	}`
	f, err := Open(writeSnapshot(t, t.TempDir(), snap), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	events, err := f.Events(context.Background(), w)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 in-window events, got %d", len(events))
	}
	if events[0].Type != usage.EventForeground || events[1].Type != usage.EventBackground {
		t.Errorf("unexpected event types: %v, %v", events[0].Type, events[1].Type)
	}
}

func TestCatalogResolution(t *testing.T) {
	dir := t.TempDir()
	iconPath := filepath.Join(dir, "chat.png")
	if err := os.WriteFile(iconPath, []byte("png"), 0o644); err != nil {
		t.Fatalf("write icon: %v", err)
	}

	snap := `{
		"granted": true,
		"catalog": [
			{"app_id": "com.example.chat", "label": "Chat", "icon": "chat.png"},
			{"app_id": "com.example.bare"},
			{"app_id": "com.example.puzzles", "label": "Puzzles", "category_hint": "game"}
		]
	}`
	f, err := Open(writeSnapshot(t, dir, snap), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	apps, err := f.InstalledApps(context.Background())
	if err != nil {
		t.Fatalf("installed apps: %v", err)
	}
	if len(apps) != 3 {
		t.Fatalf("expected 3 catalog entries, got %d", len(apps))
	}

	label, err := apps[0].Label()
	if err != nil || label != "Chat" {
		t.Errorf("label = %q, %v", label, err)
	}
	ref, err := apps[0].Icon()
	if err != nil {
		t.Fatalf("icon: %v", err)
	}
	if ref != iconPath {
		t.Errorf("icon ref = %q, want %q", ref, iconPath)
	}

	// Second resolution is served from the cache.
	ref2, err := apps[0].Icon()
	if err != nil || ref2 != ref {
		t.Errorf("cached icon = %q, %v", ref2, err)
	}

	if _, err := apps[1].Label(); err == nil {
		t.Error("expected label error for bare entry")
	}
	if _, err := apps[1].Icon(); err == nil {
		t.Error("expected icon error for bare entry")
	}

	if apps[2].CategoryHint() != category.HintGame {
		t.Errorf("hint = %q, want game", apps[2].CategoryHint())
	}
}

func TestIconResolutionFailsForMissingFile(t *testing.T) {
	snap := `{
		"granted": true,
		"catalog": [{"app_id": "com.example.chat", "label": "Chat", "icon": "missing.png"}]
	}`
	f, err := Open(writeSnapshot(t, t.TempDir(), snap), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	apps, err := f.InstalledApps(context.Background())
	if err != nil {
		t.Fatalf("installed apps: %v", err)
	}
	if _, err := apps[0].Icon(); err == nil {
		t.Error("expected error for missing icon file")
	}
}

func TestNotificationReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.jsonl")
	lines := `{"app_id": "com.example.chat", "posted_at_ms": 1710500000000}
not json at all
{"posted_at_ms": 1710500001000}
{"app_id": "com.example.mail", "posted_at_ms": 1710500002000}
`
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	nr, err := OpenNotifications(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open notifications: %v", err)
	}
	defer nr.Close()

	var got []Notification
	err = nr.Each(context.Background(), func(n Notification) error {
		got = append(got, n)
		return nil
	})
	if err != nil {
		t.Fatalf("each: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 valid notifications, got %d", len(got))
	}
	if got[0].AppID != "com.example.chat" || got[1].AppID != "com.example.mail" {
		t.Errorf("unexpected app ids: %q, %q", got[0].AppID, got[1].AppID)
	}
	if got[0].PostedAt.UnixMilli() != 1710500000000 {
		t.Errorf("posted at = %v", got[0].PostedAt)
	}
}

func TestNotificationReaderUnblocksOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	nr := NewNotificationReader(pr, zerolog.Nop())
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Notification, 1)
	done := make(chan error, 1)
	go func() {
		done <- nr.Each(ctx, func(n Notification) error {
			received <- n
			return nil
		})
	}()

	// Deliver one line so the reader is mid-stream, then cancel while
	// it sits idle waiting for the next line.
	if _, err := pw.Write([]byte(`{"app_id": "com.example.chat", "posted_at_ms": 1}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Each still blocked after context cancellation")
	}
}

func TestNotificationReaderCallbackError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.jsonl")
	if err := os.WriteFile(path, []byte(`{"app_id": "a", "posted_at_ms": 1}`+"\n"), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	nr, err := OpenNotifications(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open notifications: %v", err)
	}
	defer nr.Close()

	sentinel := errors.New("stop")
	err = nr.Each(context.Background(), func(Notification) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func msString(ts time.Time) string {
	return strconv.FormatInt(ts.UnixMilli(), 10)
}
