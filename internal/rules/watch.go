package rules

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay coalesces the burst of events editors produce for one save.
const settleDelay = 200 * time.Millisecond

// Watch calls onChange each time the rule file at path is created,
// written, renamed or removed. It watches the parent directory so that
// editors replacing the file atomically are noticed. Watch blocks until ctx
// is done.
func Watch(ctx context.Context, path string, log Logger, onChange func()) error {
	if log == nil {
		log = discard{}
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isTarget(event.Name, target) {
				continue
			}
			if !event.Has(fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settleDelay)
			} else {
				timer.Reset(settleDelay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watching %s: %v", path, err)
		}
	}
}

func isTarget(name, target string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == target
}
