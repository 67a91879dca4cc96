package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDelay is how long the export file must stay quiet before a
// conversion is started.
const DefaultWatchDelay = 500 * time.Millisecond

// ConvertFunc runs one conversion.
type ConvertFunc func(ctx context.Context) error

// Watcher re-runs a conversion whenever the export file changes. It is a
// lifecycle worker and can be placed under a supervisor.
type Watcher struct {
	*worker.BaseWorker
	path    string
	delay   time.Duration
	convert ConvertFunc
	logger  *slog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	active  atomic.Bool
	runs    atomic.Int64

	// runMu serializes conversions
	runMu   sync.Mutex
	timerMu sync.Mutex
	timer   *time.Timer
}

// NewWatcher watches the file at path. A zero delay uses DefaultWatchDelay.
func NewWatcher(path string, delay time.Duration, convert ConvertFunc, logger *slog.Logger) *Watcher {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		BaseWorker: worker.NewBaseWorker("export-watcher"),
		path:       filepath.Clean(path),
		delay:      delay,
		convert:    convert,
		logger:     logger,
	}
}

func (w *Watcher) Start(ctx context.Context) error {
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
	// editors replace files on save, so the directory is watched
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = watcher
	w.active.Store(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	w.logger.Info("watching export file", "path", w.path)
	return w.StartFunc(runCtx, w.run)
}

func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *Watcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              w.path,
			"runs":              fmt.Sprint(w.runs.Load()),
		}
	})
}

// Active reports whether the watcher is listening for changes.
func (w *Watcher) Active() bool {
	return w.active.Load()
}

// Runs returns the number of finished conversions.
func (w *Watcher) Runs() int64 {
	return w.runs.Load()
}

func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.active.Store(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()

	// wait for an in-flight conversion
	w.runMu.Lock()
	w.runMu.Unlock()

	return err
}

func (w *Watcher) loop(ctx context.Context) error {
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
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("export file changed", "op", event.Op.String())
			w.schedule(ctx)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// schedule restarts the quiet-period timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		lifecycle.Go(ctx, w.rerun, lifecycle.WithErrorHandler(func(err error) {
			w.logger.Debug("conversion task ended with error", "error", err)
		}))
	})
}

func (w *Watcher) rerun(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if ctx.Err() != nil {
		return nil
	}

	start := time.Now()
	err := w.convert(ctx)
	w.runs.Add(1)
	if err != nil {
		w.logger.Error("conversion failed", "error", err)
		return err
	}
	w.logger.Info("conversion finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
