package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/spectra/internal/image"
	"github.com/jmylchreest/spectra/internal/security"
)

// watch extracts input once and again after every change to it, until ctx
// is cancelled. Bursts of events are coalesced by the configured debounce
// interval. Failed extractions are logged and do not stop the watch.
func (j *extractJob) watch(ctx context.Context, input string) error {
	if security.IsURL(input) {
		return fmt.Errorf("--watch needs a local file or directory, not a URL")
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("failed to access path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files rather than writing them in place, so a
	// single file is watched through its directory.
	dir := input
	if !info.IsDir() {
		dir = filepath.Dir(input)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	relevant := func(ev fsnotify.Event) bool {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
			return false
		}
		if info.IsDir() {
			return image.IsImageFile(ev.Name)
		}
		return filepath.Clean(ev.Name) == filepath.Clean(input)
	}

	if err := j.run(ctx, input); err != nil {
		j.log.Error("extraction failed", "path", input, "error", err)
	}

	trigger := make(chan struct{}, 1)
	debounced := debounce.New(j.cfg.Debounce)
	j.log.Info("watching for changes", "path", dir, "debounce", j.cfg.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			j.log.Trace("change detected", "path", ev.Name, "op", ev.Op.String())
			debounced(func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			j.log.Warn("watch error", "error", err)
		case <-trigger:
			if err := j.run(ctx, input); err != nil {
				j.log.Error("extraction failed", "path", input, "error", err)
			}
		}
	}
}
