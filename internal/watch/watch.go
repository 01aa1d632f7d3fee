// Package watch rebuilds the site when a view, include or config file
// changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"viewgen/internal/logfields"
)

// DefaultDebounce groups the burst of events an editor produces on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher runs a rebuild function after file system changes settle.
type Watcher struct {
	Paths    []string
	Rebuild  func() error
	Debounce time.Duration
	// Ignore reports whether an event path should not trigger a rebuild,
	// e.g. files inside the output directory.
	Ignore func(path string) bool
}

// Run watches until ctx is cancelled. Directories are watched recursively;
// for files the parent directory is watched, which also catches editors that
// save by renaming a swap file. Missing paths are skipped. Rebuild errors are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	addWatch := func(dir string) error {
		dir = filepath.Clean(dir)
		if watched[dir] {
			return nil
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("could not watch %s: %w", dir, err)
		}
		watched[dir] = true
		log.Debug().Str(logfields.KeyDir, dir).Msg("Watching directory")
		return nil
	}

	for _, path := range w.Paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}
		if !info.IsDir() {
			if err := addWatch(filepath.Dir(path)); err != nil {
				return err
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return addWatch(p)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := ""

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) || (w.Ignore != nil && w.Ignore(event.Name)) {
				continue
			}
			// New directories inside a watched tree need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatch(event.Name); err != nil {
						log.Warn().Err(err).Msg("Could not watch new directory")
					}
				}
			}
			pending = event.Name
			timer.Reset(debounce)
		case <-timer.C:
			log.Info().Str(logfields.KeyPath, pending).Msg("Change detected, rebuilding")
			if err := w.Rebuild(); err != nil {
				log.Error().Err(err).Msg("Rebuild failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
