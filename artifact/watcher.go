package artifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes a DirStore's directory tree and reports artifact file
// changes. Loaded bundles are memoized for the life of the process, so a
// change never hot-swaps a model; the watcher exists to tell operators that
// a restart is needed to pick up republished artifacts.
type Watcher struct {
	store   *DirStore
	logger  *zap.SugaredLogger
	onEvent func(op, location string)
}

// NewWatcher builds a watcher over store. onEvent, if non-nil, is invoked
// for every create/write/remove of a regular file under the store root.
func NewWatcher(store *DirStore, logger *zap.SugaredLogger, onEvent func(op, location string)) *Watcher {
	return &Watcher{store: store, logger: logger, onEvent: onEvent}
}

// Run watches until ctx is cancelled. The store root and its immediate
// subdirectories are watched; directories created later are picked up as
// they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.store.Root()); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.store.Root())
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				if err := fw.Add(filepath.Join(w.store.Root(), entry.Name())); err != nil {
					w.logger.Warnw("failed to watch artifact subdirectory", "dir", entry.Name(), "error", err)
				}
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("artifact watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fw.Add(event.Name); err != nil {
				w.logger.Warnw("failed to watch artifact subdirectory", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Remove) {
		return
	}

	location, err := filepath.Rel(w.store.Root(), event.Name)
	if err != nil {
		return
	}
	location = filepath.ToSlash(location)

	w.logger.Infow("artifact changed on disk; restart to load it",
		"location", location,
		"op", event.Op.String(),
	)
	if w.onEvent != nil {
		w.onEvent(event.Op.String(), location)
	}
}
