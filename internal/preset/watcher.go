package preset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"macrofox/internal/logging"
	"macrofox/internal/utils"
)

const defaultWatchDebounce = 250 * time.Millisecond

// Watcher reports changes to the set of preset files in a Store's directory.
// Bursts of events are debounced into one onChange call.
type Watcher struct {
	dir      string
	onChange func()
	logger   logging.Logger
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// WatcherOption customizes watcher behavior.
type WatcherOption func(*Watcher)

// WithWatchDebounce sets the debounce window.
func WithWatchDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watcher diagnostics.
func WithWatchLogger(logger logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logging.OrNop(logger)
	}
}

// NewWatcher constructs a watcher for store's directory.
func NewWatcher(store *Store, onChange func(), opts ...WatcherOption) (*Watcher, error) {
	if store == nil {
		return nil, fmt.Errorf("preset store required")
	}
	if onChange == nil {
		return nil, fmt.Errorf("change callback required")
	}
	w := &Watcher{
		dir:      store.Dir(),
		onChange: onChange,
		logger:   logging.Nop(),
		debounce: defaultWatchDebounce,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. Cancelling ctx stops the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return nil
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create preset watcher: %w", err)
	}
	if err := fsWatcher.Add(w.dir); err != nil {
		_ = fsWatcher.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = fsWatcher
	w.mu.Unlock()

	utils.SafeGo("preset.watch", func() { w.watchLoop(fsWatcher) })
	if ctx != nil {
		utils.SafeGo("preset.watch.ctx", func() {
			select {
			case <-ctx.Done():
				w.Stop()
			case <-w.stopCh:
			}
		})
	}
	w.logger.Info("Watching presets in %s", w.dir)
	return nil
}

// Stop terminates the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
			w.watcher = nil
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher) {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Preset watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Ext(event.Name) != fileExt {
		return
	}
	w.scheduleNotify()
}

func (w *Watcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		defer utils.Recover("preset.watch.notify")
		w.onChange()
	})
}
