package exercise

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes to one file.
const DefaultDebounce = 100 * time.Millisecond

// Event reports a catalog change made by a Watcher.
type Event struct {
	Path     string
	Exercise *Exercise // nil when removed or on error
	Removed  bool
	ID       int64 // set when Removed
	Err      error
}

// Watcher reloads exercise files into a Catalog as they change on disk.
type Watcher struct {
	catalog  *Catalog
	dir      string
	delay    time.Duration
	onChange func(Event)

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool

	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the delay applied before reloading a changed file.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// NewWatcher starts watching dir. onChange is called from the watcher's
// goroutines after each reload; it may be nil.
func NewWatcher(catalog *Catalog, dir string, onChange func(Event), opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(abs); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		catalog:  catalog,
		dir:      abs,
		delay:    DefaultDebounce,
		onChange: onChange,
		watcher:  fsw,
		pending:  make(map[string]*time.Timer),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Close stops the watcher and cancels pending reloads.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isExerciseFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			w.schedule(ev.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.emit(Event{Err: err})
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.delay, func() { w.reload(path) })
}

// reload syncs the catalog with the current state of path.
func (w *Watcher) reload(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if id, ok := w.catalog.removePath(path); ok {
			w.emit(Event{Path: path, Removed: true, ID: id})
		}
		return
	}
	ex, err := w.catalog.loadPath(path)
	w.emit(Event{Path: path, Exercise: ex, Err: err})
}

func (w *Watcher) emit(ev Event) {
	if w.onChange != nil {
		w.onChange(ev)
	}
}
