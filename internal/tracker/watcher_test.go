package tracker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherRecordsWriteEvents(t *testing.T) {
	dir := t.TempDir()
	lg := NewLog(Filter{Extensions: []string{".ts"}})

	notified := make(chan struct{}, 16)
	w, err := NewWatcher(lg, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	w.Watch([]string{dir})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	path := filepath.Join(dir, "orders.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const a = 1\n"), 0644))

	if !waitFor(t, 3*time.Second, func() bool { return lg.PendingCount() > 0 }) {
		t.Fatal("no change record produced for created file")
	}

	pending := lg.Pending()
	require.Equal(t, filepath.ToSlash(path), pending[0].Path)

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("onChange callback never fired")
	}
}

func TestWatcherIgnoresFilteredExtensions(t *testing.T) {
	dir := t.TempDir()
	lg := NewLog(Filter{Extensions: []string{".ts"}})

	w, err := NewWatcher(lg, nil)
	require.NoError(t, err)

	w.Watch([]string{dir})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))

	// Give the pump a moment; nothing should be recorded.
	time.Sleep(300 * time.Millisecond)
	require.Zero(t, lg.PendingCount())
}

func TestWatcherSkipsMissingDirectory(t *testing.T) {
	lg := NewLog(Filter{})
	w, err := NewWatcher(lg, nil)
	require.NoError(t, err)
	defer w.fs.Close()

	// Must not panic or error; the directory is skipped with a warning.
	w.Watch([]string{filepath.Join(t.TempDir(), "does-not-exist")})
}
