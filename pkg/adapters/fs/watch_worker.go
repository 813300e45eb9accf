package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/kiln/pkg/core"
)

// DefaultDebounce coalesces bursts of writes to the same document.
const DefaultDebounce = 50 * time.Millisecond

// WatchConfig configures a document watcher.
type WatchConfig struct {
	// Pattern selects the documents to report, e.g. "docs/**/*.xml".
	Pattern  string
	Debounce time.Duration
	Logger   *slog.Logger
	// ErrorHandler receives fsnotify failures. They are only logged when nil.
	ErrorHandler func(error)
}

// WatchWorker reports changes of the documents selected by a pattern.
// It is a lifecycle worker and can be run under a supervisor.
type WatchWorker struct {
	*worker.BaseWorker
	config    WatchConfig
	root      string
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	mu        sync.RWMutex
	active    bool
}

// NewWatchWorker creates a watcher sending events to events.
func NewWatchWorker(config WatchConfig, events chan<- core.Event) *WatchWorker {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &WatchWorker{
		BaseWorker: worker.NewBaseWorker("kiln-watcher"),
		config:     config,
		root:       WatchRoot(config.Pattern),
		events:     events,
	}
}

func (w *WatchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := recursiveAdd(watcher, w.root); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.config.Debounce)
	w.setActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *WatchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *WatchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"root":              w.root,
			"pattern":           w.config.Pattern,
		}
	})
}

// Active reports whether the event loop is running.
func (w *WatchWorker) Active() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

func (w *WatchWorker) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

// run is the main event loop for the watcher worker.
func (w *WatchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.config.Logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.setActive(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// Drain in-flight timers before the caller closes the events channel.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *WatchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.process(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.config.Logger.Error("fsnotify error", "error", wErr)
			if w.config.ErrorHandler != nil {
				w.config.ErrorHandler(wErr)
			}
		}
	}
}

// process filters, maps and debounces one filesystem event.
func (w *WatchWorker) process(ctx context.Context, event fsnotify.Event) {
	w.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watchDirectory(ctx, event.Name)
			return
		}
	}

	if isTempFile(event.Name) || !Match(w.config.Pattern, event.Name) {
		return
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return
	}

	e := core.Event{Type: eType, Path: filepath.Clean(event.Name), Timestamp: time.Now().Unix()}
	w.debouncer.add(e, func(e core.Event) { w.send(ctx, e) })
}

// watchDirectory adds a directory created after Start and reports the
// documents that were written into it before the watch was in place.
func (w *WatchWorker) watchDirectory(ctx context.Context, dir string) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		if err := recursiveAdd(w.watcher, dir); err != nil {
			return err
		}
		return filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
			if err != nil || d.IsDir() || isTempFile(path) || !Match(w.config.Pattern, path) {
				return nil
			}
			e := core.Event{Type: core.EventCreate, Path: filepath.Clean(path), Timestamp: time.Now().Unix()}
			w.debouncer.add(e, func(e core.Event) { w.send(ctx, e) })
			return nil
		})
	}, lifecycle.WithErrorHandler(func(err error) {
		w.config.Logger.Debug("failed to watch new directory", "path", dir, "error", err)
		if w.config.ErrorHandler != nil {
			w.config.ErrorHandler(fmt.Errorf("watch %s: %w", dir, err))
		}
	}))
}

func (w *WatchWorker) send(ctx context.Context, e core.Event) {
	defer func() {
		// The events channel may be closed while the worker stops.
		_ = recover()
	}()
	select {
	case w.events <- e:
	case <-ctx.Done():
	}
}

func isTempFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, TempFilePrefix) || strings.HasSuffix(base, "~")
}

func recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// debouncer delivers the last event per path once no new event arrived for delay.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(e core.Event, deliver func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[e.Path]; ok && t.Stop() {
		d.pending.Done()
	}
	d.pending.Add(1)
	d.timers[e.Path] = time.AfterFunc(d.delay, func() {
		defer d.pending.Done()
		d.mu.Lock()
		delete(d.timers, e.Path)
		d.mu.Unlock()
		deliver(e)
	})
}

// stopAndWait rejects new events and waits up to timeout for scheduled deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for path, t := range d.timers {
		if t.Stop() {
			d.pending.Done()
		}
		delete(d.timers, path)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
