package watch

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

func TestWatcher_InitialRunAndChangeTrigger(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644))

	var runs atomic.Int32
	run := func(_ context.Context) error {
		runs.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(root, 50*time.Millisecond, nil, run, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// The initial run fires before any filesystem event.
	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package a\n"), 0o644))

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}

func TestWatcher_DebounceCollapsesBursts(t *testing.T) {
	root := t.TempDir()

	var runs atomic.Int32
	run := func(_ context.Context) error {
		runs.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(root, 300*time.Millisecond, nil, run, nil)
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "f"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return runs.Load() >= 2 },
		5*time.Second, 20*time.Millisecond)

	// Allow any stray timer to fire, then confirm the burst produced one run.
	time.Sleep(700 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), int32(3))
}

func TestWatcher_IgnoresExcludedDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	w := New(root, 50*time.Millisecond, []string{"generated"}, func(_ context.Context) error { return nil }, nil)

	assert.True(t, w.ignore(filepath.Join(root, "node_modules", "x.js")))
	assert.True(t, w.ignore(filepath.Join(root, "generated", "y.go")))
	assert.True(t, w.ignore(filepath.Join(root, ".git", "HEAD")))
	assert.False(t, w.ignore(filepath.Join(root, "src", "main.go")))
}

func TestWatcher_DefaultDebounce(t *testing.T) {
	w := New(t.TempDir(), 0, nil, func(_ context.Context) error { return nil }, nil)
	assert.Equal(t, DefaultDebounce, w.debounce)
}
