package watcher

import "context"

// Watcher monitors the config file and reports changes
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called with the watched path after it changed
type EventHandler func(ctx context.Context, filePath string) error
