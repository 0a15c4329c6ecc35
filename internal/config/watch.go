package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watcher reloads the configuration when the document changes on disk. The
// parent directory is watched rather than the file itself, so editors that
// replace the file with a rename keep triggering.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	done   chan struct{}
	logger *slog.Logger
}

// NewWatcher starts watching the document at path, invoking onChange with
// the path after each settled burst of writes.
func NewWatcher(path string, logger *slog.Logger, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:    fsw,
		path:   path,
		done:   make(chan struct{}),
		logger: logger,
	}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func(path string)) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("configuration changed on disk", "path", w.path, "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				onChange(w.path)
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Stop ends the watch.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsw.Close()
}
