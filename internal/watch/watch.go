package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports debounced changes under a set of directory trees.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Dirs     []string
	Debounce time.Duration
	OnChange func()

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a new watcher for the specified directories
func New(dirs []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  w,
		Dirs:     dirs,
		Debounce: debounce,
		OnChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// Add registers every directory below the configured roots, skipping
// hidden directories like .git.
func (w *Watcher) Add() error {
	for _, dir := range w.Dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if err := w.addTree(dir); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Start processes events until Close is called. Call Add first.
func (w *Watcher) Start() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Ignore chmod and other meta events
			if event.Op == fsnotify.Chmod {
				continue
			}
			if isHidden(event.Name) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			if timer != nil {
				timer.Reset(w.Debounce)
			} else {
				timer = time.AfterFunc(w.Debounce, w.fire)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}
	if w.OnChange != nil {
		w.OnChange()
	}
}

// Close stops Start and releases the underlying watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && base[0] == '.'
}
