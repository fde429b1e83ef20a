package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRequiresPaths(t *testing.T) {
	if _, err := New(nil, 0); err == nil {
		t.Fatal("New(nil) error = nil")
	}
}

func TestNewDedupesDirs(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "a.ics"), filepath.Join(dir, "b.ics")}, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(w.dirs) != 1 || len(w.files) != 2 {
		t.Fatalf("dirs = %v, files = %v", w.dirs, w.files)
	}
	if w.debounce != defaultDebounce {
		t.Fatalf("debounce = %v, want %v", w.debounce, defaultDebounce)
	}
}

func TestRunReportsTrackedChanges(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "work.ics")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(tracked, []byte("v1"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := New([]string{tracked}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(changed []string) { changes <- changed })
	}()

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}

	if err := os.WriteFile(other, []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write other: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(tracked, []byte("v2"), 0o600); err != nil {
			t.Fatalf("write tracked: %v", err)
		}
	}

	select {
	case got := <-changes:
		abs, _ := filepath.Abs(tracked)
		if len(got) != 1 || got[0] != abs {
			t.Fatalf("changed = %v, want [%s]", got, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "work.ics")}, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := w.Run(ctx, func([]string) {}); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}

	select {
	case <-w.Ready():
	default:
		t.Fatal("Ready not closed after Run")
	}
}
