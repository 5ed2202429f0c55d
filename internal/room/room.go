// Package room hands the resolved video room to the system browser, which owns
// camera, microphone, fullscreen and display-capture permissions.
package room

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/pkg/executor"
)

// ErrInvalidURL is returned for room URLs that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid room url")

// Opener opens a room URL.
type Opener interface {
	Open(ctx context.Context, roomURL string) error
}

type implOpener struct {
	command  string
	executor executor.Executor
	logger   logger.Logger
}

// New returns an Opener that runs command with the room URL as its only argument.
func New(command string, exec executor.Executor, log logger.Logger) Opener {
	return &implOpener{command: command, executor: exec, logger: log}
}

func (o *implOpener) Open(ctx context.Context, roomURL string) error {
	u, err := url.Parse(roomURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, roomURL)
	}

	if _, err := o.executor.Execute(ctx, o.command, u.String()); err != nil {
		return fmt.Errorf("open room: %w", err)
	}
	o.logger.Info(ctx, "Opened video room in browser")
	return nil
}
