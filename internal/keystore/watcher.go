package keystore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/jwkset/internal/jwk"
	"github.com/vyrodovalexey/jwkset/internal/observability"
)

// DefaultDebounceDelay is the quiet period after the last file event
// before the key set is reloaded.
const DefaultDebounceDelay = 200 * time.Millisecond

// ReloadCallback is called after the key set is reloaded from disk.
type ReloadCallback func(*jwk.Set)

// ErrorCallback is called when a reload or the file watch fails.
type ErrorCallback func(error)

// Watcher reloads a Store whenever its JWK set file changes.
type Watcher struct {
	path          string
	store         *Store
	watcher       *fsnotify.Watcher
	callback      ReloadCallback
	errorCallback ErrorCallback
	logger        observability.Logger
	debounceDelay time.Duration
	mu            sync.Mutex
	stopCh        chan struct{}
	stoppedCh     chan struct{}
	running       bool
}

// WatcherOption is a functional option for configuring the watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay for file changes.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		if delay > 0 {
			w.debounceDelay = delay
		}
	}
}

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithReloadCallback sets the function called after each successful reload.
func WithReloadCallback(callback ReloadCallback) WatcherOption {
	return func(w *Watcher) {
		w.callback = callback
	}
}

// WithErrorCallback sets the error callback for the watcher.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.errorCallback = callback
	}
}

// NewWatcher creates a watcher that reloads store from the file at path.
func NewWatcher(path string, store *Store, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		path:          absPath,
		store:         store,
		watcher:       fsWatcher,
		debounceDelay: DefaultDebounceDelay,
		logger:        observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start loads the key set file and begins watching it. The initial load
// must succeed. Watching ends when ctx is canceled or Stop is called; a
// Watcher whose context was canceled can be started again, one that was
// stopped cannot.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if _, err := w.store.LoadFile(ctx, w.path); err != nil {
		return err
	}

	// Watch the directory so that atomic replacements are seen.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.stoppedCh = make(chan struct{})

	w.logger.Info("started watching key set file",
		observability.String("path", w.path),
	)

	go w.watch(ctx, w.stopCh, w.stoppedCh)

	return nil
}

// Stop stops watching and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	stopCh, stoppedCh := w.stopCh, w.stoppedCh
	w.mu.Unlock()

	close(stopCh)
	<-stoppedCh

	return w.watcher.Close()
}

// ForceReload reloads the key set file immediately.
func (w *Watcher) ForceReload(ctx context.Context) error {
	set, err := w.store.LoadFile(ctx, w.path)
	if err != nil {
		return err
	}
	if w.callback != nil {
		w.callback(set)
	}
	return nil
}

// Running reports whether the watcher is currently watching the file.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watch(ctx context.Context, stopCh <-chan struct{}, stoppedCh chan<- struct{}) {
	defer close(stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.stopCh == stopCh {
				w.running = false
			}
			w.mu.Unlock()
			w.logger.Info("key set watcher stopped due to context cancellation")
			return

		case <-stopCh:
			w.logger.Info("key set watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			debounceTimer, debounceCh = w.handleFileEvent(event, debounceTimer, debounceCh)

		case <-debounceCh:
			debounceCh = nil
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleError("key set watcher error", err)
		}
	}
}

// handleFileEvent resets the debounce timer for writes and creates of the
// watched file and ignores everything else.
func (w *Watcher) handleFileEvent(
	event fsnotify.Event,
	debounceTimer *time.Timer,
	debounceCh <-chan time.Time,
) (timer *time.Timer, ch <-chan time.Time) {
	if filepath.Clean(event.Name) != w.path {
		return debounceTimer, debounceCh
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return debounceTimer, debounceCh
	}

	w.logger.Debug("key set file changed",
		observability.String("path", event.Name),
		observability.String("op", event.Op.String()),
	)

	if debounceTimer != nil {
		debounceTimer.Stop()
	}
	debounceTimer = time.NewTimer(w.debounceDelay)
	return debounceTimer, debounceTimer.C
}

func (w *Watcher) reload(ctx context.Context) {
	w.logger.Info("reloading key set",
		observability.String("path", w.path),
	)

	set, err := w.store.LoadFile(ctx, w.path)
	if err != nil {
		w.handleError("failed to reload key set", err)
		return
	}

	if w.callback != nil {
		w.callback(set)
	}
}

func (w *Watcher) handleError(msg string, err error) {
	w.logger.Error(msg, observability.Error(err))
	if w.errorCallback != nil {
		w.errorCallback(err)
	}
}
