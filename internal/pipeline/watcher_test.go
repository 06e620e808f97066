package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - NewWatcher fails on a missing directory
// - A Python file change fires the rebuild callback after debounce
// - Rapid changes coalesce into one rebuild
// - Non-Python files are ignored
// - Concurrent Stop() calls are safe

func newTestWatcher(t *testing.T, dir string, rebuilds *atomic.Int64) *Watcher {
	t.Helper()
	w, err := NewWatcher([]string{dir}, func(context.Context) { rebuilds.Add(1) })
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond
	return w
}

func waitForRebuilds(t *testing.T, rebuilds *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("expected %d rebuilds, saw %d", want, rebuilds.Load())
		case <-time.After(20 * time.Millisecond):
			if rebuilds.Load() >= want {
				return
			}
		}
	}
}

func TestNewWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing")}, func(context.Context) {})
	assert.Error(t, err)
}

func TestWatcher_RebuildOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var rebuilds atomic.Int64
	w := newTestWatcher(t, dir, &rebuilds)
	defer w.Stop()

	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.py"), []byte("x = 1\n"), 0o644))
	waitForRebuilds(t, &rebuilds, 1)
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var rebuilds atomic.Int64
	w := newTestWatcher(t, dir, &rebuilds)
	defer w.Stop()

	w.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.py"), []byte("x = 1\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}
	waitForRebuilds(t, &rebuilds, 1)

	// Give any stray debounce timers a chance to fire.
	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, rebuilds.Load(), int64(2), "burst collapses into at most a couple of rebuilds")
}

func TestWatcher_IgnoresNonPython(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var rebuilds atomic.Int64
	w := newTestWatcher(t, dir, &rebuilds)
	defer w.Stop()

	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, rebuilds.Load())
}

func TestWatcher_StopTwice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var rebuilds atomic.Int64
	w := newTestWatcher(t, dir, &rebuilds)
	w.Start(context.Background())

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			w.Stop()
			done <- struct{}{}
		}()
	}
	<-done
	<-done
}
