// Package watcher delivers debounced file change notifications for the
// incremental updater.
package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a file change notification.
type EventType string

const (
	Created  EventType = "created"
	Modified EventType = "modified"
	Deleted  EventType = "deleted"
	Moved    EventType = "moved"
)

// Event is one debounced file change.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ignoredDirs are never watched.
var ignoredDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	"dist":         true,
	"build":        true,
}

// Watcher watches a directory tree recursively and emits debounced events.
// New subdirectories are picked up as they appear.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *debouncer
	logger    *slog.Logger
}

// New creates a watcher rooted at rootDir, registering every non-ignored
// subdirectory.
func New(rootDir string, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		debouncer: newDebouncer(100 * time.Millisecond),
		logger:    logger,
	}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootDir && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Events returns the channel of debounced event batches.
func (w *Watcher) Events() <-chan []Event {
	return w.debouncer.output()
}

// Start consumes raw fsnotify events until the watcher is closed. Call in
// a goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !ignoredDirs[filepath.Base(path)] {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	var typ EventType
	switch {
	case event.Has(fsnotify.Create):
		typ = Created
	case event.Has(fsnotify.Write):
		typ = Modified
	case event.Has(fsnotify.Remove):
		typ = Deleted
	case event.Has(fsnotify.Rename):
		typ = Moved
	default:
		return
	}

	w.debouncer.add(Event{Type: typ, Path: path, Timestamp: time.Now()})
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
