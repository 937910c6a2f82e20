package tracker

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher adapts fsnotify events into change records. fsnotify does
// not watch recursively, so every subdirectory is added explicitly and
// newly created directories are picked up from create events.
type Watcher struct {
	fs       *fsnotify.Watcher
	log      *Log
	onChange func()
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a watcher feeding records into lg. onChange is
// called after each accepted event; the engine uses it to reset its
// debounce timer. onChange may be nil.
func NewWatcher(lg *Log, onChange func()) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:       fs,
		log:      lg,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch registers dirs (and their subdirectories) for events. A
// missing directory is skipped with a warning; the remaining
// directories continue to be watched.
func (w *Watcher) Watch(dirs []string) {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Printf("Warning: watch directory %s not found, skipping", dir)
			continue
		}
		w.addRecursive(dir)
	}
}

func (w *Watcher) addRecursive(root string) {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.fs.Add(path); addErr != nil {
			log.Printf("Warning: failed to watch %s: %v", path, addErr)
		}
		return nil
	})
	if err != nil {
		log.Printf("Warning: failed to walk %s: %v", root, err)
	}
}

// Start begins the event pump in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop shuts the pump down and closes the underlying watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	if err := w.fs.Close(); err != nil {
		log.Printf("Warning: error closing watcher: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// A created directory must be added so its contents are watched.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
			return
		}
	}

	var kind Kind
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = KindAdded
	case event.Op&fsnotify.Write != 0:
		kind = KindModified
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		kind = KindDeleted
	default:
		return // chmod etc.
	}

	if w.log.Record(event.Name, kind) && w.onChange != nil {
		w.onChange()
	}
}
