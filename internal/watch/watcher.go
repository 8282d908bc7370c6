// Package watch rebuilds a site whenever one of its inputs changes.
//
// A single observer goroutine receives filesystem events, records the changed
// paths and posts a rebuild request on a one-slot channel, so bursts of events
// collapse into one request. The Run loop consumes requests serially after a
// short debounce: at most one rebuild is ever in flight. Changes to files
// written by the previous rebuild are dropped at that point.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when no positive debounce is configured.
const DefaultDebounce = 100 * time.Millisecond

// BuildFunc runs one rebuild and returns the paths of the files it wrote.
// Events on those paths do not trigger another rebuild.
type BuildFunc func(ctx context.Context) ([]string, error)

// Watcher observes site inputs and runs BuildFunc on change.
type Watcher struct {
	matcher  *Matcher
	build    BuildFunc
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[string]bool // changed inputs since the last rebuild
	outputs map[string]bool // files written by the last rebuild
}

// New creates a Watcher.
func New(matcher *Matcher, build BuildFunc, debounce time.Duration, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		matcher:  matcher,
		build:    build,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]bool),
		outputs:  make(map[string]bool),
	}
}

// Run watches until ctx is cancelled, then stops the observer and returns
// nil. A failing rebuild is logged and watching continues. Setup failures
// are returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	for _, root := range w.matcher.Roots() {
		if err := w.add(fsw, root); err != nil {
			_ = fsw.Close()
			return err
		}
	}

	requests := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.observe(fsw, requests)
	}()

	w.logger.Info().Dur("debounce", w.debounce).Msg("watching for changes")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = fsw.Close()
			wg.Wait()
			w.logger.Info().Msg("stopped watching")
			return nil

		case <-requests:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := w.takePending()
			if len(changed) == 0 {
				continue
			}
			w.logger.Debug().Strs("paths", changed).Msg("inputs changed")
			w.rebuild(ctx)
		}
	}
}

// rebuild runs one build and records its outputs.
func (w *Watcher) rebuild(ctx context.Context) {
	w.logger.Info().Msg("change detected, rebuilding")

	outputs, err := w.build(ctx)
	w.setOutputs(outputs)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error().Err(err).Msg("rebuild failed")
	}
}

// observe forwards matching events until the fsnotify channels close.
func (w *Watcher) observe(fsw *fsnotify.Watcher, requests chan<- struct{}) {
	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) && w.isTrackedDir(ev.Name) {
				if err := w.add(fsw, Root{Dir: ev.Name, Recursive: true}); err != nil {
					w.logger.Warn().Err(err).Str("dir", ev.Name).Msg("cannot watch new directory")
				}
				continue
			}
			if !w.matcher.Match(ev.Name) {
				continue
			}
			w.logger.Debug().Str("path", ev.Name).Stringer("op", ev.Op).Msg("event")
			w.markPending(ev.Name)
			select {
			case requests <- struct{}{}:
			default: // a request is already pending
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

// add registers a root directory, walking it when recursive.
func (w *Watcher) add(fsw *fsnotify.Watcher, root Root) error {
	if !root.Recursive {
		if err := fsw.Add(root.Dir); err != nil {
			return fmt.Errorf("watching %s: %w", root.Dir, err)
		}
		return nil
	}

	return filepath.WalkDir(root.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != root.Dir && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// isTrackedDir reports whether p is a directory inside a recursive root.
func (w *Watcher) isTrackedDir(p string) bool {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() || ignoredDir(filepath.Base(p)) {
		return false
	}
	abs := absClean(p)
	for _, root := range w.matcher.Roots() {
		if root.Recursive && within(abs, root.Dir) {
			return true
		}
	}
	return false
}

func (w *Watcher) setOutputs(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outputs = make(map[string]bool, len(paths))
	for _, p := range paths {
		w.outputs[absClean(p)] = true
	}
}

func (w *Watcher) markPending(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[absClean(p)] = true
}

// takePending empties the pending set and returns the paths that are not
// outputs of the last rebuild, sorted.
func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var changed []string
	for p := range w.pending {
		if !w.outputs[p] {
			changed = append(changed, p)
		}
	}
	w.pending = make(map[string]bool)
	sort.Strings(changed)
	return changed
}

// ignoredDir reports whether a directory is skipped when walking roots.
func ignoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
