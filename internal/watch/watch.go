// Package watch reruns comparisons when captures change on disk.
//
// A Watcher observes one directory with fsnotify. Every *.xml file that is
// created or written is reported once it has been quiet for the debounce
// window, so a capture tool writing a dump in several chunks triggers a
// single comparison.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a changed capture is reported.
const DefaultDebounce = 300 * time.Millisecond

// ErrInvalidDebounce is returned for a negative debounce window.
var ErrInvalidDebounce = errors.New("debounce must not be negative")

// Handler is called with the path of a settled capture.
type Handler func(ctx context.Context, path string)

// Watcher reports settled capture files in a directory.
type Watcher struct {
	dir      string
	handler  Handler
	debounce time.Duration
	ext      string
	logger   *slog.Logger
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithExtension sets the file extension to watch, ".xml" by default.
func WithExtension(ext string) Option {
	return func(w *Watcher) {
		w.ext = ext
	}
}

// WithLogger sets a custom logger for the watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for dir. Nothing is watched until Run is called.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: DefaultDebounce,
		ext:      ".xml",
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce < 0 {
		return nil, ErrInvalidDebounce
	}
	return w, nil
}

// Ready is closed once Run has started watching the directory.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the directory until ctx is done. Handlers run on the
// calling goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for captures", "dir", w.dir, "debounce", w.debounce)
	close(w.ready)

	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = time.Now().Add(w.debounce)
			w.arm(timer, pending)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			for _, path := range settled(pending, time.Now()) {
				delete(pending, path)
				w.logger.Debug("capture settled", "path", path)
				w.handler(ctx, path)
			}
			w.arm(timer, pending)
		}
	}
}

// relevant reports whether an event is a create or write of a capture file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), w.ext)
}

// arm resets timer to the earliest pending deadline.
func (w *Watcher) arm(timer *time.Timer, pending map[string]time.Time) {
	if len(pending) == 0 {
		return
	}
	var next time.Time
	for _, deadline := range pending {
		if next.IsZero() || deadline.Before(next) {
			next = deadline
		}
	}
	timer.Reset(max(time.Until(next), 0))
}

// settled returns the pending paths whose deadline has passed, sorted.
func settled(pending map[string]time.Time, now time.Time) []string {
	var paths []string
	for path, deadline := range pending {
		if !deadline.After(now) {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths
}
