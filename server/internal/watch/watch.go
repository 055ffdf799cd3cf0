package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher turns fsnotify events on one file into Notifier wakes.
//
// The parent directory is watched rather than the file itself, so the watch
// survives editors and scripts that save by writing a temp file and renaming
// it over the original.
type Watcher struct {
	path     string
	notifier *Notifier
	fsw      *fsnotify.Watcher
}

// New starts watching path's directory. The watch is active when New returns;
// call Run to start delivering wakes.
func New(path string, n *Notifier) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add %q: %w", filepath.Dir(abs), err)
	}

	return &Watcher{path: abs, notifier: n, fsw: fsw}, nil
}

// Run forwards write and create events for the watched file until ctx is
// cancelled or the underlying watcher closes. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	slog.Info("watch: watching for changes", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("watch: file changed", "path", w.path, "op", event.Op.String())
			w.notifier.Notify()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch: watcher error", "err", err)
		}
	}
}
