// Package watch reports changes to calendar files.
//
// Change notifications are delivered on the goroutine that calls Run, so a
// caller can swap a monthloader callback from inside onChange without any
// locking.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "weekcal/internal/log"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher watches a fixed set of files via their parent directories, which
// keeps working when editors replace files by rename.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	debounce time.Duration

	ready     chan struct{}
	readyOnce sync.Once
}

// New constructs a Watcher for paths. A non-positive debounce uses the
// default.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		debounce: debounce,
		ready:    make(chan struct{}),
	}
	seenDir := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if !seenDir[dir] {
			seenDir[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Ready is closed once Run has registered all watches.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done, calling onChange with the sorted set of
// changed files after each quiet period of the debounce duration. Run may
// be called again after it returns; Ready stays closed from the first run.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return err
		}
	}
	w.readyOnce.Do(func() { close(w.ready) })
	appLog.Debug("watch: started", "dirs", w.dirs, "debounce", w.debounce.String())

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if _, tracked := w.files[name]; !tracked {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			sort.Strings(changed)
			appLog.Info("watch: files changed", "files", changed)
			onChange(changed)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			appLog.Error("watch: error", err)
		}
	}
}
