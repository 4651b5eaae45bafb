package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/attrmeta/internal/logger"
)

// Watch invokes fn whenever the document for name is written or removed
// by another process. Delivery is best-effort: events may be coalesced
// by the OS. Watching stops when ctx is cancelled.
//
// This exists so a long-running daemon can notice out-of-band edits to
// the option blob (the documented cross-process last-write-wins window)
// instead of discovering them on the next load.
func (p *Provider) Watch(ctx context.Context, name string, fn func()) error {
	path, err := p.optionPath(name)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory, not the file: renames (our own atomic saves
	// included) replace the inode and would silently drop a file watch.
	if err := watcher.Add(p.cfg.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", p.cfg.Path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					fn()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("option watch error", "name", name, "error", err)
			}
		}
	}()

	return nil
}
