package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the inbox watcher.
type WatcherConfig struct {
	// Dir is the directory watched for new sheets. Sub-directories are not
	// watched.
	Dir string

	// DebounceInterval is the quiet period after the last event on a file
	// before it is handled (default: 500ms)
	DebounceInterval time.Duration

	// Extensions are the file extensions handled, e.g. ".xlsx".
	Extensions []string
}

// Watcher calls a handler for every sheet created or rewritten in a
// directory. Events on the same file are debounced so a file that is still
// being copied is handled once, after it settles.
type Watcher struct {
	watcher  *fsnotify.Watcher
	config   WatcherConfig
	logger   *slog.Logger
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a Watcher.
func NewWatcher(cfg WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = 500 * time.Millisecond
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = SheetExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  w,
		config:   cfg,
		logger:   logger.With("component", "jobs.watcher"),
		debounce: NewDebouncer(cfg.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called. handle runs on the
// debounce goroutine, one file at a time; its errors are logged.
func (w *Watcher) Watch(ctx context.Context, handle func(ctx context.Context, path string) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.config.Dir, err)
	}

	w.logger.Info("inbox watcher started",
		"dir", w.config.Dir,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	var handling sync.Mutex
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("inbox watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldHandle(event) {
				continue
			}

			w.logger.Debug("inbox event", "path", event.Name, "op", event.Op.String())

			name := event.Name
			w.debounce.Trigger(name, func() {
				handling.Lock()
				defer handling.Unlock()

				if ctx.Err() != nil {
					return
				}
				w.logger.Info("processing inbox sheet", "path", name)
				if err := handle(ctx, name); err != nil {
					w.logger.Error("inbox sheet failed", "path", name, "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("inbox watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels pending debounced events.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) shouldHandle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	base := filepath.Base(event.Name)
	// editor lock files such as "~$book.xlsx"
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	if IsOutputName(base) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// Debouncer delays a callback per key until no new trigger arrived for the
// interval.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer creates a Debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval, timers: make(map[string]*time.Timer)}
}

// Trigger schedules fn for key, replacing a pending callback for the same key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		current, ok := d.timers[key]
		if d.stopped || !ok || current != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		fn()
	})
	d.timers[key] = timer
}

// Pending returns the number of scheduled callbacks.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
