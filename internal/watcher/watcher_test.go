package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestWriteTriggersReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumlink.yaml")
	writeFile(t, path, "logging:\n  level: info\n")

	var reloads atomic.Int32
	svc := NewService(path, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, testLogger())
	svc.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond) // let watcher initialize

	writeFile(t, path, "logging:\n  level: debug\n")

	if !waitFor(t, 2*time.Second, func() bool { return reloads.Load() >= 1 }) {
		t.Fatal("expected a reload after writing the config file")
	}
}

func TestBurstIsDebounced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumlink.yaml")
	writeFile(t, path, "a: 1\n")

	var reloads atomic.Int32
	svc := NewService(path, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, testLogger())
	svc.SetDebounce(200 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	for i := range 5 {
		writeFile(t, path, "a: "+string(rune('2'+i))+"\n")
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return reloads.Load() >= 1 }) {
		t.Fatal("expected a reload")
	}
	time.Sleep(400 * time.Millisecond)
	if n := reloads.Load(); n != 1 {
		t.Errorf("expected exactly one reload for a burst, got %d", n)
	}
}

func TestOtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "albumlink.yaml")
	writeFile(t, path, "a: 1\n")

	var reloads atomic.Int32
	svc := NewService(path, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, testLogger())
	svc.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "other.yaml"), "b: 2\n")
	time.Sleep(300 * time.Millisecond)

	if n := reloads.Load(); n != 0 {
		t.Errorf("expected no reloads, got %d", n)
	}
}

func TestReloadErrorKeepsWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumlink.yaml")
	writeFile(t, path, "a: 1\n")

	var calls atomic.Int32
	svc := NewService(path, func(context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("bad yaml")
		}
		return nil
	}, testLogger())
	svc.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, "a: [\n")
	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("expected first reload")
	}
	writeFile(t, path, "a: 3\n")
	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 2 }) {
		t.Fatal("expected watcher to keep running after a failed reload")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumlink.yaml")
	svc := NewService(path, func(context.Context) error { return nil }, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestChangedDetectsModification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumlink.yaml")
	writeFile(t, path, "a: 1\n")

	svc := NewService(path, func(context.Context) error { return nil }, testLogger())
	svc.snapshot()
	if svc.changed() {
		t.Fatal("unchanged file reported as changed")
	}

	writeFile(t, path, "a: 12345\n")
	if !svc.changed() {
		t.Error("size change not detected")
	}
	if svc.Path() != path {
		t.Errorf("Path = %q, want %q", svc.Path(), path)
	}
}
