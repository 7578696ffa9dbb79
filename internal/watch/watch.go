// Package watch re-runs analysis when project sources change, with a
// debounce window so editor save bursts collapse into one run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period required after the last event before
// a run triggers.
const DefaultDebounce = 500 * time.Millisecond

// skipDirs are directory names never watched, in addition to any
// project-configured exclusions.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
	".depscope":    true,
}

// Watcher debounces filesystem events under a project root and invokes a
// run callback after each quiet period. Runs are serial: events arriving
// during a run coalesce into at most one follow-up run.
type Watcher struct {
	root     string
	debounce time.Duration
	excluded map[string]bool
	run      func(ctx context.Context) error
	log      *logrus.Logger
}

// New creates a Watcher for root. A zero debounce falls back to
// DefaultDebounce; a nil logger defaults to logrus.New().
func New(root string, debounce time.Duration, excludeDirs []string, run func(ctx context.Context) error, log *logrus.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.New()
	}
	excluded := make(map[string]bool, len(skipDirs)+len(excludeDirs))
	for d := range skipDirs {
		excluded[d] = true
	}
	for _, d := range excludeDirs {
		excluded[d] = true
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		excluded: excluded,
		run:      run,
		log:      log,
	}
}

// Run watches until the context is cancelled. The initial run happens
// immediately, before any filesystem event.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	w.runOnce(ctx)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignore(event.Name) {
				continue
			}
			// New directories join the watch set so nested creates keep
			// triggering.
			if event.Op.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.log.WithError(err).Warn("watch new directory")
					}
				}
			}
			w.log.WithFields(logrus.Fields{
				"op":   event.Op.String(),
				"path": event.Name,
			}).Debug("fs event")
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			w.runOnce(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	start := time.Now()
	if err := w.run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.WithError(err).Error("analysis run failed")
		return
	}
	w.log.WithField("durationMs", time.Since(start).Milliseconds()).Info("analysis run complete")
}

// addTree registers every non-excluded directory under root with the
// watcher. fsnotify watches are per-directory, not recursive.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (w.excluded[name] || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		if addErr := fw.Add(path); addErr != nil {
			w.log.WithError(addErr).WithField("path", path).Warn("watch directory")
		}
		return nil
	})
}

// ignore reports whether an event path falls inside an excluded directory.
func (w *Watcher) ignore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.excluded[part] || (part != "." && strings.HasPrefix(part, ".")) {
			return true
		}
	}
	return false
}
