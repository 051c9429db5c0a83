package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// reloadOps are the events on the config file's name that trigger a reload.
// An atomic save (write temp file, rename over path) arrives as Create.
const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch calls onChange with the freshly loaded Config whenever the file at
// path changes, until ctx is cancelled. It watches the parent directory so
// the watch survives editors that replace the file instead of writing it.
//
// A reload that fails to read, parse or validate is logged and skipped;
// onChange is not called and the caller keeps its current config.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	target := filepath.Clean(path)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: new watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watch dir %q: %w", dir, err)
	}

	slog.Info("config: watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&reloadOps == 0 {
				continue
			}
			reload(target, ev, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func reload(path string, ev fsnotify.Event, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		// Rename away from path leaves nothing to load until the next Create.
		slog.Warn("config: reload skipped, keeping current config",
			"path", path, "op", ev.Op.String(), "err", err)
		return
	}
	slog.Info("config: reloaded", "path", path, "op", ev.Op.String())
	onChange(cfg)
}
