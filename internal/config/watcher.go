package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/advisor/pkg/logger"
)

// DefaultReloadDelay is how long the watcher waits for a burst of file
// events to settle before re-parsing.
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher re-parses a configuration file whenever it changes and hands every
// valid result to a callback. Invalid documents are logged and skipped.
type Watcher struct {
	path    string
	delay   time.Duration
	log     *logger.Logger
	onLoad  func(*Config) error
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// NewWatcher prepares a watcher for path. Start must be called to begin.
// onLoad runs with the watcher's lock held and must not call Close.
func NewWatcher(path string, log *logger.Logger, onLoad func(*Config) error) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		path:   path,
		delay:  DefaultReloadDelay,
		log:    log.WithFields(map[string]any{"component": "config_watcher", "path": path}),
		onLoad: onLoad,
		done:   make(chan struct{}),
	}
}

// Start watches the file's directory until ctx is cancelled or Close is
// called. Editors often replace files instead of writing them in place, so
// the directory is watched and events are filtered by name.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = fsw

	go w.processEvents(ctx)
	w.log.Info("watching configuration")
	return nil
}

// Done is closed once the event loop has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close stops watching. Once it returns, onLoad is no longer called, even
// by a reload that was already scheduled.
func (w *Watcher) Close() error {
	w.stopTimer()
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			_ = w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.stopTimer()
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.WithField("op", event.Op.String()).Debug("configuration changed")
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.stopTimer()
				return
			}
			w.log.Error(err, "watcher error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// reload holds mu throughout so stopTimer waits for an in-flight load.
func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	cfg, err := ParseConfig(w.path)
	if err != nil {
		w.log.Error(err, "failed to reload configuration")
		return
	}
	if err := w.onLoad(cfg); err != nil {
		w.log.Error(err, "failed to apply reloaded configuration")
		return
	}
	w.log.Info("configuration reloaded")
}
