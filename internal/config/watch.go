package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Watch reloads path on every write and calls onChange with the new Config.
// It runs until ctx is cancelled. A reload that fails to parse is logged
// and the previous config stays active.
func Watch(ctx context.Context, path string, log *logger.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Info("watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Error("reload of %s failed, keeping previous config: %v", path, err)
				continue
			}

			log.Info("reloaded %s", path)
			onChange(cfg)

			// The inode may have been replaced.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher: %v", err)
		}
	}
}
