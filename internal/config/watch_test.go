package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherCoalescesWriteBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tatami.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var calls atomic.Int32
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	watcher, err := NewWatcher(path, logger, func(string) {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer watcher.Stop()

	// A burst of writes inside the debounce window.
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`{"border": true}`), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("callback calls = %d, want 1 for a coalesced burst", got)
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tatami.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var calls atomic.Int32
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	watcher, err := NewWatcher(path, logger, func(string) {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(2 * watchDebounce)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback calls = %d for sibling file write, want 0", got)
	}
}
