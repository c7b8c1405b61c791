// Package watch re-runs a callback when declaration files change.
package watch

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period after the last event before the
// callback runs.
const DefaultDelay = 100 * time.Millisecond

// Watcher monitors declaration files. Events are collected until no new
// event arrives for the debounce delay, then the callback runs once with
// every changed file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	delay    time.Duration
	patterns []string
	files    map[string]bool
	log      *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// New watches path. For a directory, every file matching one of patterns
// counts; for a file, only that file. The parent directory is what is
// registered, so editors that save by rename are seen too.
func New(path string, isDir bool, patterns []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		delay:    DefaultDelay,
		patterns: patterns,
		log:      zap.L(),
	}
	for _, opt := range opts {
		opt(w)
	}
	dir := path
	if !isDir {
		dir = filepath.Dir(path)
		w.files = map[string]bool{filepath.Clean(path): true}
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.log.Debug("watching", zap.String("dir", dir))
	return w, nil
}

// Run blocks until ctx is done, calling onChange after each burst of
// changes. Callback errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context, []string) error) error {
	defer w.watcher.Close()

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.log.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			files := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if err := onChange(ctx, files); err != nil {
				w.log.Error("error handling file changes", zap.Strings("files", files), zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) matches(name string) bool {
	if w.files != nil {
		return w.files[filepath.Clean(name)]
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, pattern := range w.patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return len(w.patterns) == 0
}
