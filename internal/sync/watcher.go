package sync

import (
	"os"
	"path/filepath"
	stdsync "sync"

	"github.com/fsnotify/fsnotify"

	"taskpad/internal/kv"
)

// FileWatcher turns filesystem notifications on the snapshot file into
// Events, so separate processes sharing a data directory observe each
// other's saves.
//
// The data directory is watched rather than the file itself: atomic
// writes replace the file by rename, which would silently detach a
// direct file watch.
type FileWatcher struct {
	key     string
	path    string
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
	once    stdsync.Once
}

// NewFileWatcher watches the store's file for key.
func NewFileWatcher(store *kv.FileStore, key string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(store.Dir()); err != nil {
		_ = w.Close()
		return nil, err
	}

	fw := &FileWatcher{
		key:     key,
		path:    store.Path(key),
		watcher: w,
		events:  make(chan Event, 8),
		done:    make(chan struct{}),
	}
	go fw.run()
	return fw, nil
}

// Events returns the notification channel. It is closed when the
// watcher shuts down.
func (fw *FileWatcher) Events() <-chan Event { return fw.events }

// Close stops watching and closes the event channel.
func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) run() {
	defer close(fw.events)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.isSnapshotWrite(ev) {
				continue
			}
			data, err := os.ReadFile(fw.path)
			if err != nil || len(data) == 0 {
				continue
			}
			select {
			case fw.events <- Event{Key: fw.key, NewValue: data}:
			default: // consumer lagging, drop; next save re-broadcasts
			}

		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; delivery is best-effort.

		case <-fw.done:
			return
		}
	}
}

func (fw *FileWatcher) isSnapshotWrite(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(fw.path) {
		return false
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Rename)
}
