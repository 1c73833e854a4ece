package catalog

import (
	"os"
	"path/filepath"
	"time"

	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher observes the channels root for library changes (files or folders
// added, removed, renamed) and invokes a callback after a debounce window.
// Bursts of events from a bulk copy collapse into a single callback.
type Watcher struct {
	library  *Library
	debounce time.Duration
	onChange func()

	watcher *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
}

// NewWatcher creates a library watcher. onChange runs on the watcher
// goroutine; keep it fast or dispatch.
func NewWatcher(library *Library, debounce time.Duration, onChange func()) *Watcher {
	return &Watcher{
		library:  library,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins watching the library root and all its subfolders
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	if err := w.addRecursive(w.library.Root()); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("root", w.library.Root()).
			Msg("Failed to register some library folders for watching")
	}

	go w.run()

	logger.Log.Info().
		Str("root", w.library.Root()).
		Dur("debounce", w.debounce).
		Msg("Library watcher started")

	return nil
}

// Stop halts the watcher and waits for its goroutine to exit
func (w *Watcher) Stop() {
	close(w.done)
	<-w.stopped
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	logger.Log.Debug().Msg("Library watcher stopped")
}

func (w *Watcher) run() {
	defer close(w.stopped)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			// New folders need registering before their contents settle
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}

			logger.Log.Debug().
				Str("event", event.Op.String()).
				Str("path", event.Name).
				Msg("Library change detected")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			logger.Log.Info().Msg("Library changed, triggering schedule invalidation")
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn().Err(err).Msg("Library watcher error")
		}
	}
}

// relevant filters out events that cannot affect schedules: chmod noise and
// non-video files outside of directory operations.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if isVideoFile(event.Name) {
		return true
	}
	// Directory create/remove/rename changes channel structure; a stat on a
	// removed path fails, so treat extension-less paths as directories.
	return filepath.Ext(event.Name) == ""
}

// addRecursive registers dir and every subfolder with the fsnotify watcher
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				logger.Log.Warn().
					Err(err).
					Str("path", path).
					Msg("Failed to watch folder")
			}
		}
		return nil
	})
}
