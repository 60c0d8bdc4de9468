// Package watcher reports files arriving in the bucket directory. It only
// announces arrivals; processing still happens when explicitly triggered.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leefowlercu/phoenix/internal/events"
	"github.com/leefowlercu/phoenix/internal/metrics"
	"github.com/leefowlercu/phoenix/internal/scanner"
)

// Stats contains watcher activity counters.
type Stats struct {
	EventsReceived  int64
	ArrivalsPending int
	Arrivals        int64
	Errors          int64
	IsRunning       bool
}

// Option configures the Watcher.
type Option func(*Watcher)

// WithSettleWindow sets how long a file must be quiet before it is reported.
func WithSettleWindow(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher watches the top level of the bucket directory.
type Watcher struct {
	dir       string
	fsWatcher *fsnotify.Watcher
	bus       events.Bus
	coalescer *Coalescer
	logger    *slog.Logger
	settle    time.Duration

	mu       sync.RWMutex
	stats    Stats
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	errChan  chan error
}

// New creates a Watcher for dir. Subdirectories, including the processed
// archive, are not watched.
func New(bus events.Bus, dir string, opts ...Option) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bucket path; %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bucket; %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bucket is not a directory: %s", absDir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}

	w := &Watcher{
		dir:       absDir,
		fsWatcher: fsw,
		bus:       bus,
		logger:    slog.Default(),
		settle:    500 * time.Millisecond,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		errChan:   make(chan error, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.coalescer = NewCoalescer(w.settle)

	return w, nil
}

// Dir returns the watched bucket directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Start begins watching. It is an error to start twice.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	if err := w.fsWatcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to watch bucket; %w", err)
	}
	w.running = true
	w.stats.IsRunning = true
	w.mu.Unlock()

	go w.processEvents(ctx)
	go w.processArrivals(ctx)

	w.logger.Info("bucket watcher started", "dir", w.dir)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	var stopErr error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		wasRunning := w.running
		w.running = false
		w.stats.IsRunning = false
		w.mu.Unlock()

		w.coalescer.Stop()
		close(w.stopCh)
		if wasRunning {
			<-w.doneCh
		}
		stopErr = w.fsWatcher.Close()
	})
	return stopErr
}

// Stats returns current watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	s := w.stats
	w.mu.RUnlock()
	s.ArrivalsPending = w.coalescer.PendingCount()
	return s
}

// Errors reports fsnotify errors.
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// CollectMetrics reports the watcher unhealthy when it is not running.
func (w *Watcher) CollectMetrics(ctx context.Context) error {
	if !w.Stats().IsRunning {
		return errors.New("bucket watcher not running")
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.logger.Error("fsnotify error", "error", err)
			select {
			case w.errChan <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	w.mu.Lock()
	w.stats.EventsReceived++
	w.mu.Unlock()

	name := filepath.Base(event.Name)
	if isEditorNoise(name) || strings.HasPrefix(name, ".") || !scanner.IsAsset(name) {
		return
	}
	if filepath.Dir(event.Name) != w.dir {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.coalescer.Forget(event.Name)
		metrics.RecordWatcherEvent("removed")
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		w.coalescer.Touch(event.Name, time.Now())
		metrics.RecordWatcherEvent("touched")
	}
}

func (w *Watcher) processArrivals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case a, ok := <-w.coalescer.Events():
			if !ok {
				return
			}
			w.publishArrival(ctx, a)
		}
	}
}

func (w *Watcher) publishArrival(ctx context.Context, a Arrival) {
	info, err := os.Stat(a.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		w.logger.Warn("failed to stat arrival", "path", a.Path, "error", err)
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	event := events.NewBucketAssetArrived(a.Path, filepath.Base(a.Path), info.Size())
	if err := w.bus.Publish(ctx, event); err != nil {
		w.logger.Error("failed to publish arrival", "path", a.Path, "error", err)
		return
	}

	w.mu.Lock()
	w.stats.Arrivals++
	w.mu.Unlock()
	metrics.RecordWatcherEvent("arrived")
	w.logger.Info("asset arrived in bucket", "name", filepath.Base(a.Path), "size", info.Size())
}

// isEditorNoise returns true for transient editor and upload artifacts.
func isEditorNoise(name string) bool {
	switch {
	case strings.HasSuffix(name, ".swp"), strings.HasSuffix(name, ".swo"), strings.HasSuffix(name, ".swn"):
		return true
	case strings.HasSuffix(name, "~"):
		return true
	case strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"):
		return true
	case strings.HasSuffix(name, ".part"), strings.HasSuffix(name, ".crdownload"), strings.HasSuffix(name, ".tmp"):
		return true
	}
	return false
}
