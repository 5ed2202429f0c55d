package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/pkg/debounce"
)

// settleDelay lets editors finish writing before the handler runs.
const settleDelay = 300 * time.Millisecond

// New creates a Watcher for a single file. The parent directory is watched so
// that editors replacing the file by rename are still seen.
func New(filePath string, handler EventHandler, log logger.Logger) (Watcher, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		filePath: abs,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		settle:   debounce.New(settleDelay),
	}, nil
}
