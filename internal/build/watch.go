package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildCallback is called after every watcher-driven run.
// report is nil when the run failed.
type RebuildCallback func(report *Report, err error)

// Watch starts an fsnotify watcher on the directories holding the inputs and
// reruns the build whenever one of the input files changes, until ctx is
// cancelled. root is the absolute blog directory the paths are relative to.
//
// Editors often write a file in several steps, so events are debounced:
// a run starts once no input event arrived for the debounce interval.
func (c *Coordinator) Watch(ctx context.Context, root string, paths Paths, debounce time.Duration, cb RebuildCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	inputs := make(map[string]string, len(paths.Inputs))
	dirs := map[string]struct{}{}
	for _, in := range paths.Inputs {
		abs := filepath.Join(root, filepath.FromSlash(in))
		inputs[abs] = in
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			c.logger.Warn("watcher: add dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		}
	}

	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	c.logger.Info("watcher: started", slog.String("root", root), slog.Int("inputs", len(inputs)))

	// rebuildTimer is used to debounce input changes.
	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(debounce)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			c.logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			report, runErr := c.Run(ctx, paths)
			if runErr != nil {
				c.logger.Warn("watcher: rebuild failed", slog.String("error", runErr.Error()))
			}
			if cb != nil {
				cb(report, runErr)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, watched := inputs[ev.Name]
			if !watched {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			c.logger.Debug("watcher: input changed", slog.String("file", rel), slog.String("op", ev.Op.String()))
			scheduleRebuild()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
