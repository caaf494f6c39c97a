package workspace

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/scrivener/pkg/logger"
)

// debounce delay after the last filesystem event before the reload fires.
const debounceDelay = 500 * time.Millisecond

// Watcher reloads a registry when its backing directory changes.
type Watcher struct {
	dir     string
	reload  func()
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	closeCh chan struct{}
	closed  bool
}

// New starts watching dir for *.json changes and invokes reload after a
// debounce window. Returns nil when the directory cannot be watched; the
// registry then stays static, which is not an error.
func New(dir string, reload func()) *Watcher {
	if dir == "" {
		return nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		logger.Warn("[Workspace] resolve %q: %v", dir, err)
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("[Workspace] create watcher: %v, directory loaded statically", err)
		return nil
	}
	if err := fsw.Add(absDir); err != nil {
		logger.Debug("[Workspace] watch %q: %v, directory loaded statically", absDir, err)
		fsw.Close()
		return nil
	}

	w := &Watcher{
		dir:     absDir,
		reload:  reload,
		watcher: fsw,
		closeCh: make(chan struct{}),
	}
	go w.loop()

	logger.Debug("[Workspace] watching %s", absDir)
	return w
}

// Close stops the watcher. Safe to call on nil and multiple times.
func (w *Watcher) Close() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.closeCh)
	w.watcher.Close()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			w.trigger()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

// trigger resets the debounce timer so a burst of events reloads once.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() {
		logger.Info("[Workspace] %s changed, reloading", w.dir)
		w.reload()
	})
}
