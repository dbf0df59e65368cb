package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzg/nunitius/internal/config"
	"github.com/arzg/nunitius/internal/watcher"
)

func writeConfig(t *testing.T, path string, nickname string) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Nickname = nickname
	require.NoError(t, config.Save(path, cfg))
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, configPath, "initial")

	w, err := watcher.New(watcher.Config{
		ConfigPath:  configPath,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	for i := 0; i < 10; i++ {
		writeConfig(t, configPath, "bob")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case cfg := <-onChange:
		assert.Equal(t, "bob", cfg.Nickname)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
		// Expected - no second notification
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	otherPath := filepath.Join(dir, "other.txt")
	writeConfig(t, configPath, "initial")
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	w, err := watcher.New(watcher.Config{
		ConfigPath:  configPath,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
		// Expected - no notification for unrelated file
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, configPath, "initial")

	w, err := watcher.New(watcher.Config{
		ConfigPath:  configPath,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
		// Expected - stop completed successfully
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_ReloadReflectsNewValues(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, configPath, "initial")

	w, err := watcher.New(watcher.Config{
		ConfigPath:  configPath,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	writeConfig(t, configPath, "alice")

	select {
	case cfg := <-onChange:
		assert.Equal(t, "alice", cfg.Nickname)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification for config write")
	}
}

func TestDefaultConfig(t *testing.T) {
	configPath := "/test/config.yaml"
	cfg := watcher.DefaultConfig(configPath)

	assert.Equal(t, configPath, cfg.ConfigPath)
	assert.Equal(t, 100*time.Millisecond, cfg.DebounceDur)
}
