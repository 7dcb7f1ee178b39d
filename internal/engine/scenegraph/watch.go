package scenegraph

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports writes to layout files. Events arrive on a goroutine owned
// by fsnotify and are forwarded to Changes; the frame loop drains Changes so
// reloads happen on the render thread.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan string
	paths   map[string]bool
	log     *zap.Logger
	done    chan struct{}
}

// NewWatcher starts watching the directories that contain paths.
func NewWatcher(log *zap.Logger, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating layout watcher: %w", err)
	}

	w := &Watcher{
		fs:      fw,
		changes: make(chan string, 8),
		paths:   make(map[string]bool),
		log:     log,
		done:    make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Editors replace files on save, so watch the directory rather than the file.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	go w.run()
	return w, nil
}

// Changes delivers the absolute path of each modified layout file.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !w.paths[abs] {
				continue
			}
			select {
			case w.changes <- abs:
			default:
				// A reload is already pending for the frame loop.
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("layout watcher error", zap.Error(err))
		}
	}
}
