package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"pitchflow/internal/logging"
	"pitchflow/internal/spec"
)

// Watch calls onChange with freshly loaded params each time path is written
// or replaced. The parent directory is watched so editors that save through
// a temp file and rename keep triggering reloads. A reload that fails is
// logged and skipped. Runs until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(spec.Features)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logging.L().Info("params: watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadParams(target)
			if err != nil {
				logging.L().Error("params: reload failed", "path", target, "err", err)
				continue
			}
			logging.L().Info("params: reloaded", "path", target)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.L().Error("params: watcher error", "err", err)
		}
	}
}
