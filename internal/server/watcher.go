package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the bursts of events editors emit for one save.
const reloadDebounce = 200 * time.Millisecond

// watcher calls reload after the watched file changes. It watches the parent
// directory because editors often replace files instead of writing them in
// place.
type watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	reload   func() error
	debounce time.Duration
	logger   *slog.Logger
}

func newWatcher(path string, reload func() error, logger *slog.Logger) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &watcher{
		path:     abs,
		fsw:      fsw,
		reload:   reload,
		debounce: reloadDebounce,
		logger:   logger,
	}, nil
}

func (w *watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// run processes events until ctx is done. Reload failures are logged and the
// previous obstacles stay in effect.
func (w *watcher) run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("watching floor plan", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("floor plan watcher error", "error", err)
		case <-timer.C:
			if err := w.reload(); err != nil {
				floorPlanReloads.WithLabelValues("error").Inc()
				w.logger.Error("floor plan reload failed", "path", w.path, "error", err)
				continue
			}
			floorPlanReloads.WithLabelValues("ok").Inc()
		}
	}
}
