package catalog

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	setupChannel(t, root, "Movies", []string{"m1.mp4"}, []string{"a1.mp4"})

	var fired atomic.Int32
	library := newTestLibrary(t, root)
	watcher := NewWatcher(library, 100*time.Millisecond, func() {
		fired.Add(1)
	})

	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// A burst of writes inside the debounce window collapses to one callback
	showsDir := filepath.Join(root, "Movies", showsDirName)
	for i := 0; i < 3; i++ {
		name := filepath.Join(showsDir, "new"+string(rune('a'+i))+".mp4")
		require.NoError(t, os.WriteFile(name, []byte("stub"), 0o644))
	}

	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, 3*time.Second, 20*time.Millisecond)

	// No further callbacks once the burst has settled
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatcherStopIsClean(t *testing.T) {
	root := t.TempDir()
	setupChannel(t, root, "Movies", []string{"m1.mp4"}, []string{"a1.mp4"})

	library := newTestLibrary(t, root)
	watcher := NewWatcher(library, 50*time.Millisecond, func() {})

	require.NoError(t, watcher.Start())
	watcher.Stop()
}

func TestWatcherRelevantFiltering(t *testing.T) {
	watcher := NewWatcher(nil, time.Second, nil)

	assert.True(t, watcher.relevant(fsnotify.Event{Name: "/tv/Movies/Shows/m1.mp4", Op: fsnotify.Create}))
	assert.True(t, watcher.relevant(fsnotify.Event{Name: "/tv/NewChannel", Op: fsnotify.Create}))
	assert.False(t, watcher.relevant(fsnotify.Event{Name: "/tv/Movies/Shows/notes.txt", Op: fsnotify.Write}))
	assert.False(t, watcher.relevant(fsnotify.Event{Name: "/tv/Movies/Shows/m1.mp4", Op: fsnotify.Chmod}))
}
