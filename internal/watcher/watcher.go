package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/pkg/debounce"
)

type implWatcher struct {
	filePath string
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	settle   debounce.Debouncer
}

// Start blocks until ctx is done, calling the handler once per burst of changes
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Config watcher started. Monitoring: %s", w.filePath)

	for {
		select {
		case <-ctx.Done():
			w.settle.Cancel()
			w.logger.Info(ctx, "Config watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if filepath.Clean(event.Name) != w.filePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.logger.Debug(ctx, "Config changed: %s", event.Op)
			w.settle.Trigger(func() {
				if err := w.handler(ctx, w.filePath); err != nil {
					w.logger.Error(ctx, "Failed to reload %s: %v", w.filePath, err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	w.settle.Cancel()
	return w.watcher.Close()
}
