package scene

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long a scene file must be left alone before it is
// reloaded.
const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a scene file whenever it changes on disk. Scenes that fail
// to load are reported on Errors and the previous scene stays in use.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Scenes  chan *Scene
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch starts watching the scene at path. The parent directory is watched
// so that editors replacing the file by rename are still seen.
func Watch(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		path:    path,
		watcher: w,
		Scenes:  make(chan *Scene, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Scenes and Errors are closed once it has stopped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Scenes)
	defer close(w.Errors)

	// the scene is loaded once the file has been quiet for reloadDebounce
	var reload <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reload = time.After(reloadDebounce)
		case <-reload:
			reload = nil
			s, err := Load(w.path)
			if err != nil {
				w.sendError(err)
				continue
			}
			select {
			case w.Scenes <- s:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		case <-w.closeCh:
			return
		}
	}
}

// sendError drops the error when the last one has not been read yet.
func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
