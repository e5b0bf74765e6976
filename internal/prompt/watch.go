package prompt

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watch loads path, then reloads it whenever it changes until ctx is
// cancelled. The parent directory is watched so editors that replace the
// file by rename are picked up. A template that fails to load is logged and
// the previous one stays active.
func (b *Builder) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	if err := b.Load(path); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("prompt watcher: started", slog.String("path", abs))

	// Debounce bursts of writes from a single save.
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("prompt watcher: stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			if err := b.Load(abs); err != nil {
				logger.Warn("prompt watcher: reload failed",
					slog.String("path", abs),
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("prompt watcher: reloaded", slog.String("path", abs))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			timerCh = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("prompt watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
