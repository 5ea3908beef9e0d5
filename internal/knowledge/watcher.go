package knowledge

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// SeedWatcher watches a knowledge seed file and reloads the index when it
// changes. Reloads are administrative: they swap the corpus wholesale and
// never interleave with an in-flight search.
type SeedWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	index    *MemoryIndex
	seedPath string
	debounce time.Duration
	pending  time.Time
	logger   *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewSeedWatcher creates a watcher for the given seed file. The watch is
// registered on the parent directory because editors replace files on save.
func NewSeedWatcher(index *MemoryIndex, seedPath string, logger *zap.Logger) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SeedWatcher{
		watcher:  watcher,
		index:    index,
		seedPath: seedPath,
		debounce: 500 * time.Millisecond,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (sw *SeedWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	sw.running = true
	sw.mu.Unlock()

	if err := sw.watcher.Add(filepath.Dir(sw.seedPath)); err != nil {
		return err
	}
	sw.logger.Info("Watching knowledge seed file", zap.String("path", sw.seedPath))

	go sw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (sw *SeedWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh

	if err := sw.watcher.Close(); err != nil {
		sw.logger.Error("Error closing seed watcher", zap.Error(err))
	}
}

func (sw *SeedWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Error("Seed watcher error", zap.Error(err))
		case <-ticker.C:
			sw.reloadIfSettled()
		}
	}
}

func (sw *SeedWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(sw.seedPath) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	sw.mu.Lock()
	sw.pending = time.Now()
	sw.mu.Unlock()
}

// reloadIfSettled reloads once events on the seed file have settled past the
// debounce window, batching rapid editor saves into one reload.
func (sw *SeedWatcher) reloadIfSettled() {
	sw.mu.Lock()
	if sw.pending.IsZero() || time.Since(sw.pending) < sw.debounce {
		sw.mu.Unlock()
		return
	}
	sw.pending = time.Time{}
	sw.mu.Unlock()

	count, err := LoadSeedFile(sw.index, sw.seedPath)
	if err != nil {
		sw.logger.Warn("Seed reload failed", zap.Error(err))
		return
	}
	sw.logger.Info("Reloaded knowledge seed file",
		zap.String("path", sw.seedPath),
		zap.Int("documents", count))
}
