package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsConfigFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grid.yaml"), []byte("name: x"), 0644))

	select {
	case name := <-w.Events:
		assert.Equal(t, "grid.yaml", filepath.Base(name))
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a watch event for grid.yaml")
	}
}

func TestWatcher_ReportsAfterLastWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: par"), 0644))
	time.Sleep(watchDebounce / 3)
	require.NoError(t, os.WriteFile(path, []byte("name: partial-then-final"), 0644))
	lastWrite := time.Now()

	select {
	case name := <-w.Events:
		assert.Equal(t, "grid.yaml", filepath.Base(name))
		assert.GreaterOrEqual(t, time.Since(lastWrite), watchDebounce/2, "event fired before the writes settled")
		data, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, "name: partial-then-final", string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a watch event for grid.yaml")
	}

	select {
	case name := <-w.Events:
		t.Errorf("Expected the burst to coalesce, got a second event for %s", filepath.Base(name))
	case <-time.After(3 * watchDebounce):
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestManager_WatchRefreshesDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, DefaultConfigID, createValidConfig())

	manager, err := NewManager(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- manager.Watch(ctx) }()

	// give the watcher a moment to register the directory
	time.Sleep(50 * time.Millisecond)

	// write aside and rename so the watcher never sees a half-written file
	staging := t.TempDir()
	changed := createValidConfig()
	changed.Name = "Edited"
	writeConfigFile(t, staging, DefaultConfigID, changed)
	require.NoError(t, os.Rename(
		filepath.Join(staging, DefaultConfigID+".json"),
		filepath.Join(dir, DefaultConfigID+".json"),
	))

	assert.Eventually(t, func() bool {
		return manager.GetDefault().Name == "Edited"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Watch to return after cancel")
	}
}
