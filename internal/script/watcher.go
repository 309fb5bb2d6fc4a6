package script

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 100 * time.Millisecond

func isScriptFile(path string) bool {
	switch filepath.Ext(path) {
	case ".tengo", ".yaml", ".yml":
		return true
	}
	return false
}

// Watch reloads the loader whenever a manifest or script file in its
// directory changes. It blocks until ctx is canceled. The directory must
// exist on the OS filesystem.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}
	l.logger.Info("Watching scripted actions for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Script watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isScriptFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			l.logger.Debug("Script file event", "event", event.Op.String(), "path", event.Name)
			pending = time.After(reloadDelay)

		case <-pending:
			pending = nil
			if _, err := l.Load(); err != nil {
				l.logger.Error("Failed to reload scripted actions", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("File system watcher error", "error", err)
		}
	}
}
