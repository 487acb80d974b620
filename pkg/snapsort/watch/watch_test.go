package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// collectHandler records every handled path.
type collectHandler struct {
	mu    sync.Mutex
	paths []string
}

func (c *collectHandler) handle(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
	return nil
}

func (c *collectHandler) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNew_DefaultOptions(t *testing.T) {
	w, err := New(func(string) error { return nil }, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if w.opts.Settle != 500*time.Millisecond {
		t.Errorf("default settle = %v, want 500ms", w.opts.Settle)
	}
	if w.opts.Poll != 250*time.Millisecond {
		t.Errorf("default poll = %v, want 250ms", w.opts.Poll)
	}
}

func TestWatch_QueuesExistingFiles(t *testing.T) {
	inbox := t.TempDir()
	existing := filepath.Join(inbox, "existing.jpg")
	if err := os.WriteFile(existing, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &collectHandler{}
	w, err := New(h.handle, Options{Settle: 50 * time.Millisecond, Poll: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(inbox); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if !waitFor(t, 2*time.Second, func() bool { return len(h.snapshot()) == 1 }) {
		t.Fatalf("existing file was not handled, got %v", h.snapshot())
	}
	if got := h.snapshot()[0]; got != existing {
		t.Errorf("handled %s, want %s", got, existing)
	}
}

func TestWatch_HandlesNewFileAfterSettle(t *testing.T) {
	inbox := t.TempDir()

	h := &collectHandler{}
	w, err := New(h.handle, Options{Settle: 50 * time.Millisecond, Poll: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(inbox); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	path := filepath.Join(inbox, "new.jpg")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(h.snapshot()) == 1 }) {
		t.Fatalf("new file was not handled, got %v", h.snapshot())
	}
}

func TestWatch_GrowingFileWaitsForStableSize(t *testing.T) {
	inbox := t.TempDir()

	h := &collectHandler{}
	w, err := New(h.handle, Options{Settle: 400 * time.Millisecond, Poll: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(inbox); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	path := filepath.Join(inbox, "growing.jpg")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	// Keep the file growing for longer than one settle window. Each size
	// change must restart the window, so the handler stays quiet.
	for i := 0; i < 5; i++ {
		if _, err := f.Write([]byte("chunk")); err != nil {
			t.Fatal(err)
		}
		time.Sleep(100 * time.Millisecond)
		if got := h.snapshot(); len(got) != 0 {
			t.Fatalf("file handled while still growing, got %v", got)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	// Once writes stop, one full settle window passes and the file is handled.
	if !waitFor(t, 3*time.Second, func() bool { return len(h.snapshot()) == 1 }) {
		t.Fatalf("stable file was not handled, got %v", h.snapshot())
	}
	if got := h.snapshot()[0]; got != path {
		t.Errorf("handled %s, want %s", got, path)
	}
}

func TestWatch_RemovedFileNotHandled(t *testing.T) {
	inbox := t.TempDir()
	path := filepath.Join(inbox, "gone.jpg")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &collectHandler{}
	w, err := New(h.handle, Options{Settle: 200 * time.Millisecond, Poll: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(inbox); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Remove before the settle window elapses.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	if got := h.snapshot(); len(got) != 0 {
		t.Errorf("removed file should not be handled, got %v", got)
	}
}

func TestWatch_NonDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(func(string) error { return nil }, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	// Watching a non-directory is a no-op, not an error.
	if err := w.Watch(path); err != nil {
		t.Errorf("Watch() on file error = %v", err)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	w, err := New(func(string) error { return nil }, Options{Settle: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
