package trigger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// FileWatcher reports changes to a single file.
//
// The parent directory is watched rather than the file, so editors that
// save by writing a temporary file and renaming it over the original are
// still seen.
type FileWatcher struct {
	path     string
	name     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewFileWatcher starts watching path. Events within debounce of each other
// produce one trigger, sent after the last of them.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &FileWatcher{
		path:     path,
		name:     filepath.Base(abs),
		debounce: debounce,
		watcher:  w,
	}, nil
}

// Path returns the watched file as given to [NewFileWatcher].
func (w *FileWatcher) Path() string { return w.path }

// Run delivers a [DataChanged] event to send for each settled change until
// ctx is done or the watcher is closed. Watcher errors are returned.
func (w *FileWatcher) Run(ctx context.Context, send func(Event)) error {
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
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}
			// Only content changes and replacements matter, not chmod.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.debounce <= 0 {
				send(Event{Kind: DataChanged, Path: w.path})
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			send(Event{Kind: DataChanged, Path: w.path})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		}
	}
}

// Close stops watching.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
