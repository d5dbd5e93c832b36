package logger

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reopenDebounce = 50 * time.Millisecond

// reopenWatcher calls onRemoved when a log file is removed or renamed, so
// the session can recreate it after an external logrotate. It watches the
// parent directory because the watch on a renamed file follows the inode.
type reopenWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	logger    zerolog.Logger
	onRemoved func()
	debounce  time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newReopenWatcher(path string, logger zerolog.Logger, onRemoved func()) (*reopenWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch log directory: %w", err)
	}

	rw := &reopenWatcher{
		watcher:   watcher,
		path:      abs,
		logger:    logger,
		onRemoved: onRemoved,
		debounce:  reopenDebounce,
		stopCh:    make(chan struct{}),
	}

	go rw.run()

	return rw, nil
}

// Stop stops the watcher. A debounced callback that is already running is
// not waited for.
func (rw *reopenWatcher) Stop() {
	rw.stopOnce.Do(func() {
		close(rw.stopCh)

		rw.mu.Lock()
		if rw.timer != nil {
			rw.timer.Stop()
		}
		rw.mu.Unlock()

		if err := rw.watcher.Close(); err != nil {
			rw.logger.Warn().Err(err).Msg("Failed to close reopen watcher")
		}
	})
}

func (rw *reopenWatcher) run() {
	for {
		select {
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != rw.path {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				rw.logger.Debug().
					Str("file", rw.path).
					Str("op", event.Op.String()).
					Msg("Log file moved away")
				rw.scheduleReopen()
			}

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			rw.logger.Error().Err(err).Msg("Reopen watcher error")

		case <-rw.stopCh:
			return
		}
	}
}

func (rw *reopenWatcher) scheduleReopen() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.timer != nil {
		rw.timer.Stop()
	}

	rw.timer = time.AfterFunc(rw.debounce, func() {
		select {
		case <-rw.stopCh:
			return
		default:
		}
		rw.onRemoved()
	})
}
