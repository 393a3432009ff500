package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"partyfm/logger"

	"github.com/fsnotify/fsnotify"
)

// How long a file must stay quiet before it is indexed. Copies into the
// library arrive as a burst of write events; indexing half-written files
// produces garbage metadata.
const settleDelay = 2 * time.Second

// Watcher keeps the library index current while the party runs: new or
// rewritten audio files under the library root are indexed as they settle.
type Watcher struct {
	indexer   *Indexer
	onIndexed func(path string) // Called after a successful index; may be nil

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher over the indexer's library root.
func NewWatcher(ix *Indexer, onIndexed func(path string)) *Watcher {
	return &Watcher{
		indexer:   ix,
		onIndexed: onIndexed,
		pending:   make(map[string]*time.Timer),
	}
}

// Run watches the library root until ctx is cancelled. Watches are added
// recursively; directories created later are picked up from their create
// events.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := w.indexer.cfg.LibraryPath
	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	logger.Info("[Watcher] Watching music library", logger.String("path", root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("[Watcher] Watch error", logger.ErrorField(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(watcher, event.Name); err == nil {
				logger.Debug("[Watcher] Added watch", logger.String("path", event.Name))
			}
			return
		}
	}

	if !IsSupported(event.Name) {
		return
	}

	w.schedule(ctx, event.Name)
}

// schedule (re)arms the settle timer for path. Each new event pushes the
// index back until the file has been quiet for settleDelay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}

	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		if err := w.indexer.IndexFile(ctx, path); err != nil {
			logger.Warn("[Watcher] Failed to index new file",
				logger.String("path", path),
				logger.ErrorField(err))
			return
		}

		logger.Info("[Watcher] Indexed new library file", logger.String("path", path))
		if w.onIndexed != nil {
			w.onIndexed(path)
		}
	})
}

// addRecursive adds a watch for dir and every directory below it. Non-directory
// paths are ignored.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				logger.Warn("[Watcher] Failed to watch directory",
					logger.String("path", path),
					logger.ErrorField(err))
			}
		}
		return nil
	})
}
