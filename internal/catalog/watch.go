package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/orizon-lang/lty/internal/types"
)

// DefaultDebounce is how long a Watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a catalogue file whenever it changes.
type Watcher struct {
	path     string
	tcx      *types.Context
	debounce time.Duration
	onLoad   func(*Catalog, error)
}

// NewWatcher creates a watcher for the catalogue at path. onLoad receives
// every reload result, including failed ones.
func NewWatcher(path string, tcx *types.Context, onLoad func(*Catalog, error)) *Watcher {
	return &Watcher{
		path:     path,
		tcx:      tcx,
		debounce: DefaultDebounce,
		onLoad:   onLoad,
	}
}

// WithDebounce sets the debounce duration.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled, reloading the catalogue after each
// burst of writes. The directory is watched rather than the file so that
// editors replacing the file are noticed.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	name := filepath.Base(w.path)

	var pending <-chan time.Time

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if filepath.Base(ev.Name) != name {
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(w.debounce)
			}

		case <-pending:
			pending = nil
			w.onLoad(Load(w.path, w.tcx))

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.onLoad(nil, fmt.Errorf("watch %s: %w", w.path, err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
