package jobs

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesPerKey(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var a, b atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger("a", func() { a.Add(1) })
	}
	d.Trigger("b", func() { b.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if a.Load() != 1 || b.Load() != 1 {
		t.Errorf("calls a=%d b=%d, want 1 each", a.Load(), b.Load())
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Stop()
	d.Trigger("b", func() { calls.Add(1) })

	time.Sleep(80 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("calls = %d after Stop, want 0", calls.Load())
	}
}

func TestWatcher_HandlesSheets(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(WatcherConfig{Dir: dir, DebounceInterval: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	handled := make(chan string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Watch(ctx, func(_ context.Context, path string) error {
			handled <- filepath.Base(path)
			return nil
		})
	}()

	// let the watcher register the directory
	time.Sleep(100 * time.Millisecond)

	for _, name := range []string{"~$lock.xlsx", ".hidden.xlsx", "notes.txt", "products.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case name := <-handled:
		if name != "products.xlsx" {
			t.Errorf("handled %q, want products.xlsx", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("sheet was not handled")
	}

	select {
	case name := <-handled:
		t.Errorf("unexpected extra handling of %q", name)
	case <-time.After(200 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestWatcher_SkipsOwnResults(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(WatcherConfig{Dir: dir, DebounceInterval: 30 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Watch(ctx, func(_ context.Context, p string) error {
			calls.Add(1)
			out := filepath.Join(dir, OutputName(p, time.Now()))
			return os.WriteFile(out, []byte("result"), 0o644)
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "in.xlsx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("handled %d times, want 1", got)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestIsOutputName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{OutputName("in.xlsx", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)), true},
		{"/inbox/products_checked_20260401_090000.xlsx", true},
		{"products.xlsx", false},
		{"checked.xlsx", false},
	}
	for _, tt := range tests {
		if got := IsOutputName(tt.name); got != tt.want {
			t.Errorf("IsOutputName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{Dir: filepath.Join(t.TempDir(), "missing")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(context.Background(), func(context.Context, string) error { return nil }); err == nil {
		t.Error("Watch() error = nil for missing directory")
	}
}
