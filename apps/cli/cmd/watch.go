package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

// watchedFiles returns the non-empty paths, cleaned and made absolute
func watchedFiles(paths ...string) []string {
	var files []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		files = append(files, filepath.Clean(p))
	}
	return files
}

// watchFiles calls onChange after writes to any of files settle, until ctx
// is done. Parent directories are watched so editors that replace files on
// save are still seen.
func watchFiles(ctx context.Context, files []string, onChange func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	wanted := make(map[string]bool, len(files))
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		wanted[file] = true
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	// Debounce timer for rapid file changes. onChange runs on this
	// goroutine, so sends never overlap and none run after return.
	debounce := time.NewTimer(WatchDebounceDelay)
	debounce.Stop()
	defer debounce.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounce.C:
			onChange(pending)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if !wanted[name] {
				continue
			}
			pending = name
			debounce.Reset(WatchDebounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
