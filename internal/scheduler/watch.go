package scheduler

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher calls trigger once a watched file has stopped changing for
// the debounce interval.
//
// The parent directory is watched rather than the file itself so that
// SQLite's -wal and -journal companions and atomic replacements are seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	trigger  func()

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	done    chan struct{}
}

func NewFileWatcher(path string, debounce time.Duration, trigger func()) *FileWatcher {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &FileWatcher{path: path, debounce: debounce, trigger: trigger}
}

// Start begins watching until ctx is cancelled or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	go w.run(ctx)

	log.Printf("Watching %s for changes (debounce %v)", w.path, w.debounce)
	return nil
}

func (w *FileWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	_ = w.watcher.Close()
	<-w.done

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

func (w *FileWatcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			// Drain until the watcher closes its channels.
			for range w.watcher.Events {
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("WARNING: file watcher error: %v", err)
		}
	}
}

// relevant reports whether event touches the watched file or one of its
// companions (name-wal, name-shm, name-journal).
func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), filepath.Base(w.path))
}

func (w *FileWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.trigger)
}
