package store

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher observes the journal file for changes made by other processes
// so history viewers can refresh as sessions are appended elsewhere.
// Events are debounced: the atomic rename a journal write ends with can
// surface as several filesystem events in quick succession.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	path     string
	onChange func()
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
}

// NewWatcher starts watching the store's journal. onChange runs after
// each settled change until Stop is called.
func NewWatcher(s *Store, logger zerolog.Logger, onChange func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		logger:   logger,
		path:     s.Path(),
		onChange: onChange,
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	// Watch the directory, not the file: the atomic rename replaces the
	// inode a file-level watch would be pinned to.
	if err := watcher.Add(filepath.Dir(s.Path())); err != nil {
		watcher.Close()
		return nil, err
	}

	go w.run()

	return w, nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Journal change detected")

				w.scheduleNotify()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Journal watcher error")

		case <-w.stopCh:
			if w.timer != nil {
				w.timer.Stop()
			}
			return
		}
	}
}

// scheduleNotify debounces the change callback.
func (w *Watcher) scheduleNotify() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}
