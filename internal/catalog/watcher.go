package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reload event kinds passed to EventCallback.
const (
	EventReloaded = "reloaded"
	EventRejected = "rejected"
)

const reloadDebounce = 200 * time.Millisecond

// EventCallback is called after a watcher-driven reload attempt.
// version is the active snapshot version after the attempt.
type EventCallback func(kind string, version string)

// Watch starts an fsnotify watcher on the fixture directory and reloads the
// catalog when a fixture changes, until ctx is cancelled.
//
// Editors tend to emit several events per save (truncate, write, rename of a
// swap file), so reloads are debounced. An invalid fixture keeps the previous
// snapshot active and is reported as EventRejected.
func Watch(ctx context.Context, c *Catalog, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory rather than the files: atomic saves replace the
	// inode and a file watch would go silent after the first rename.
	if err := w.Add(c.Root()); err != nil {
		return err
	}

	logger.Info("catalog watcher: started", slog.String("root", c.Root()))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("catalog watcher: stopped")
			return nil

		case <-timerCh:
			reload(c, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isFixture(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("catalog watcher: change",
				slog.String("file", filepath.Base(ev.Name)),
				slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reload(c *Catalog, logger *slog.Logger, cb EventCallback) {
	changed, err := c.Reload()
	if err != nil {
		logger.Warn("catalog watcher: reload rejected", slog.String("error", err.Error()))
		if cb != nil {
			cb(EventRejected, c.Snapshot().Version)
		}
		return
	}
	if !changed {
		return
	}
	snap := c.Snapshot()
	logger.Info("catalog watcher: reloaded",
		slog.Int("artworks", len(snap.Artworks)),
		slog.Int("workshops", len(snap.Workshops)),
		slog.String("version", snap.Version))
	if cb != nil {
		cb(EventReloaded, snap.Version)
	}
}

func isFixture(path string) bool {
	switch filepath.Base(path) {
	case ArtworksFile, WorkshopsFile:
		return true
	}
	return false
}
