// Package watch monitors an inbox directory and hands new files to a
// handler once they have settled.
//
// A file is considered settled when its size has been stable for the
// configured window. This avoids archiving files that are still being
// written by a camera import or a network copy. Files are handled one at a
// time, in the order they settle.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/snapsort/pkg/snapsort/logging"
)

// Handler processes one settled file.
type Handler func(path string) error

// Options configures a Watcher.
type Options struct {
	// Settle is how long a file's size must stay stable before it is
	// handed to the handler.
	Settle time.Duration

	// Poll is the interval at which pending files are re-checked.
	// Defaults to half the settle window.
	Poll time.Duration
}

// pending tracks a file that has appeared but not yet settled.
type pending struct {
	size    int64
	lastMod time.Time
}

// Watcher watches a directory tree for new files.
type Watcher struct {
	fsw     *fsnotify.Watcher
	handler Handler
	opts    Options
	logger  *logging.Logger

	mu      sync.Mutex
	pending map[string]pending
	closed  bool
}

// New creates a Watcher that calls handler for every settled file.
func New(handler Handler, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}
	if opts.Poll <= 0 {
		opts.Poll = opts.Settle / 2
	}

	return &Watcher{
		fsw:     fsw,
		handler: handler,
		opts:    opts,
		logger:  logging.Get("watch"),
		pending: make(map[string]pending),
	}, nil
}

// Watch starts watching root and all its subdirectories. Symlinks are not
// followed to avoid loops. Files already present under root are queued as
// pending so a pre-filled inbox drains on startup.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.fsw.Add(path)
		}

		if d.Type().IsRegular() {
			w.track(path)
		}
		return nil
	})
}

// Run processes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.fsw.Close()
}

// handleEvent tracks created and written files and watches new directories.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			w.mu.Lock()
			delete(w.pending, ev.Name)
			w.mu.Unlock()
		}
		return
	}

	info, err := os.Lstat(ev.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		if ev.Has(fsnotify.Create) {
			// New subdirectory: watch it and pick up anything already inside.
			if err := w.Watch(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
		}
		return
	}

	if info.Mode().IsRegular() {
		w.track(ev.Name)
	}
}

// track records a file's current size for settle detection.
func (w *Watcher) track(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[path] = pending{size: info.Size(), lastMod: time.Now()}
}

// flushSettled hands every settled file to the handler, in path order.
func (w *Watcher) flushSettled() {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, p := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}
		if info.Size() != p.size {
			// Still growing; restart the settle window.
			w.pending[path] = pending{size: info.Size(), lastMod: now}
			continue
		}
		if now.Sub(p.lastMod) >= w.opts.Settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		if err := w.handler(path); err != nil {
			w.logger.Error("failed to archive file", "path", path, "error", err)
		}
	}
}
