package document

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses the bursts of write events editors produce while
// saving a file into one change notification.
const debounceDelay = 200 * time.Millisecond

// Watcher reports external changes to the managed document directory, so an
// open canvas can offer to reload when its file changes on disk.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange func(name string)
	done     chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// Watch starts watching the manager's directory. onChange is called with the
// document name (no extension) after each settle of create/write/remove
// events, from the watcher goroutine.
func (m *Manager) Watch(onChange func(name string)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(m.dir); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		onChange: onChange,
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			base := filepath.Base(ev.Name)
			if !strings.HasSuffix(base, fileExt) {
				continue // not a document file
			}
			name := strings.TrimSuffix(base, fileExt)
			w.debounce(name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("document watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) debounce(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[name]; ok {
		timer.Reset(debounceDelay)
		return
	}
	w.pending[name] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, name)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.onChange(name)
		}
	})
}

// Close stops the watcher and cancels pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}
