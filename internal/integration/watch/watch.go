// Package watch reloads a file's contents whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long the watcher waits after the last event before
// reading the file. Editors often write a file in several steps.
const DefaultSettle = 50 * time.Millisecond

// Watcher calls back with a file's contents whenever it is written.
type Watcher struct {
	path   string
	settle time.Duration
	log    zerolog.Logger
}

// New creates a watcher for path.
func New(path string, settle time.Duration, log zerolog.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		path:   filepath.Clean(path),
		settle: settle,
		log:    log.With().Str("component", "watch").Str("path", path).Logger(),
	}
}

// Run watches until ctx is cancelled. onChange receives the file contents
// once at start and again after each settled change. Read errors are passed
// to onError and do not stop the watch.
func (w *Watcher) Run(ctx context.Context, onChange func(string), onError func(error)) error {
	if _, err := os.Stat(w.path); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.log.Warn().Err(err).Msg("failed to close watcher")
		}
	}()

	// Watch the directory so rename-on-save editors keep working.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.emit(onChange, onError)

	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.log.Debug().Str("op", event.Op.String()).Msg("file changed")
			timer.Reset(w.settle)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			onError(fmt.Errorf("watch %s: %w", w.path, err))
		case <-timer.C:
			w.emit(onChange, onError)
		}
	}
}

func (w *Watcher) emit(onChange func(string), onError func(error)) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		onError(fmt.Errorf("read %s: %w", w.path, err))
		return
	}
	onChange(string(data))
}
