// Package watch rebuilds the site when posts, templates or assets change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildFunc is invoked once per burst of filesystem events.
type RebuildFunc func(ctx context.Context) error

// Watcher observes a set of directory trees. Bursts of events shorter than
// the debounce window collapse into a single rebuild, and rebuilds never
// overlap.
type Watcher struct {
	dirs     []string
	ignored  []string
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a watcher for dirs. Paths below any of ignored never trigger a
// rebuild; pass the output directory there when it lives inside a watched tree.
func New(dirs, ignored []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	w := &Watcher{debounce: debounce, logger: logger}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) != "" {
			w.dirs = append(w.dirs, filepath.Clean(dir))
		}
	}
	for _, dir := range ignored {
		if strings.TrimSpace(dir) != "" {
			w.ignored = append(w.ignored, filepath.Clean(dir))
		}
	}
	return w
}

// Run blocks until ctx is cancelled, calling rebuild after every change.
// Rebuild errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	watched := 0
	for _, dir := range w.dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			w.logger.Warn("watch", "dir", dir, "error", "not a directory, skipped")
			continue
		}
		watched += w.addTree(fsw, dir)
	}
	w.logger.Info("watching for changes", "dirs", watched, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				w.addTree(fsw, event.Name)
			}
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch", "error", err)
		case <-timer.C:
			started := time.Now()
			if err := rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("rebuild", "error", err)
				continue
			}
			w.logger.Info("rebuilt", "duration", time.Since(started).Round(time.Millisecond))
		}
	}
}

// addTree watches root and every directory below it, returning the count added.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) int {
	added := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("watch", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("watch", "path", path, "error", err)
			return nil
		}
		added++
		return nil
	})
	return added
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	// editor swap files and our own build directories
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".old") {
		return false
	}
	return !w.isIgnored(event.Name)
}

func (w *Watcher) isIgnored(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.ignored {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
