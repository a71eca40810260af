package skills

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of filesystem events into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the index when Markdown files under dir change and then calls
// onChange with the refreshed index. It blocks until ctx is cancelled.
// Sub-directories that exist when Watch starts, or are created later, are watched too.
func (ix *Index) Watch(ctx context.Context, dir string, debounce time.Duration, onChange func(*Index)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to init file watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := addTree(watcher, dir); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			relevant := strings.HasSuffix(strings.ToLower(event.Name), ".md") || event.Has(fsnotify.Remove)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// Files written before the new directory is watched are caught by the reload.
					_ = addTree(watcher, event.Name)
					relevant = true
				}
			}
			if !relevant {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case <-timer.C:
			pending = false
			if err := ix.Reload(ctx); err != nil {
				ix.logger.Error("failed to reload skills", "dir", dir, "error", err)
				continue
			}
			ix.logger.Info("skills reloaded", "dir", dir, "count", ix.Len())
			if onChange != nil {
				onChange(ix)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ix.logger.Error("skills watcher error", "error", err)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
