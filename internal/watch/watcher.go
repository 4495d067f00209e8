// Package watch reloads metadata whenever a file that took part in the
// previous load changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// DefaultDebounce is the quiet period before a reload starts.
const DefaultDebounce = 300 * time.Millisecond

// LoadFunc performs one load and returns every file path it read,
// including the top-level file. Those paths are watched until the next load.
type LoadFunc func(ctx context.Context) ([]string, error)

// Watcher drives repeated loads from filesystem notifications.
type Watcher struct {
	logger   zclload.Logger
	debounce time.Duration

	files map[string]struct{}
	dirs  map[string]struct{}
}

// New creates a watcher. A non-positive debounce selects DefaultDebounce.
func New(logger zclload.Logger, debounce time.Duration) *Watcher {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		logger:   logger,
		debounce: debounce,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
}

// Run performs the initial load, then reloads after every debounced batch
// of changes until ctx is done. A failing initial load is returned; later
// failures are logged and the previous watch set is kept.
func (w *Watcher) Run(ctx context.Context, load LoadFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	paths, err := load(ctx)
	if err != nil {
		return err
	}
	if err := w.refresh(fsw, paths); err != nil {
		return err
	}

	debouncer := NewDebouncer(w.debounce)
	defer debouncer.Stop()

	w.logger.Info("Watching %d files for changes", len(w.files))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			path := filepath.Clean(event.Name)
			if _, watched := w.files[path]; watched {
				w.logger.Verbose("Changed: %s (%s)", path, event.Op)
				debouncer.Add(path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error: %v", err)

		case batch := <-debouncer.C():
			w.logger.Info("Reloading after %d changed files", len(batch))
			paths, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("Reload failed: %v", err)
				continue
			}
			if err := w.refresh(fsw, paths); err != nil {
				w.logger.Error("Failed to update watch list: %v", err)
			}
		}
	}
}

func relevant(e fsnotify.Event) bool {
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || e.Has(fsnotify.Rename) || e.Has(fsnotify.Remove)
}

// refresh replaces the watched file set. Directories are watched rather
// than files so editors that replace files on save keep being observed.
func (w *Watcher) refresh(fsw *fsnotify.Watcher, paths []string) error {
	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		p = filepath.Clean(p)
		files[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}

	for dir := range dirs {
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.logger.Verbose("Watching directory: %s", dir)
	}
	for dir := range w.dirs {
		if _, ok := dirs[dir]; !ok {
			_ = fsw.Remove(dir)
		}
	}

	w.files, w.dirs = files, dirs
	return nil
}
