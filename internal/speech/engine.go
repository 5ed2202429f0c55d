package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/call-companion/internal/logger"
)

// ErrAlreadyStarted is returned by Start while a session is open.
var ErrAlreadyStarted = errors.New("recognition already started")

// transport is one open connection to a recognition service.
type transport interface {
	Send(v interface{}) error
	// Receive returns the next message; io.EOF when the peer ended the stream.
	Receive() ([]byte, error)
	Close() error
}

type dialFunc func(ctx context.Context) (transport, error)

type session struct {
	t       transport
	stopped atomic.Bool
}

// streamEngine drives the shared command/event protocol over any transport.
type streamEngine struct {
	name   string
	locale string
	dial   dialFunc
	logger logger.Logger

	mu     sync.Mutex
	active *session
}

func (e *streamEngine) Start(ctx context.Context, h Handler) error {
	e.mu.Lock()
	if e.active != nil {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.mu.Unlock()

	t, err := e.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", e.name, err)
	}

	if err := t.Send(startCommand(e.locale)); err != nil {
		t.Close()
		return fmt.Errorf("write start command: %w", err)
	}

	line, err := t.Receive()
	if err != nil {
		t.Close()
		return fmt.Errorf("read start response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Close()
		return fmt.Errorf("unmarshal start response: %w", err)
	}
	if !resp.OK {
		t.Close()
		return fmt.Errorf("%s refused start: %s", e.name, resp.Error)
	}

	s := &session{t: t}
	e.mu.Lock()
	if e.active != nil {
		e.mu.Unlock()
		t.Close()
		return ErrAlreadyStarted
	}
	e.active = s
	e.mu.Unlock()

	e.logger.Debug(ctx, "Recognition session opened on %s (locale %s)", e.name, e.locale)
	go e.readLoop(ctx, s, h)
	return nil
}

func (e *streamEngine) Stop() error {
	e.mu.Lock()
	s := e.active
	e.active = nil
	e.mu.Unlock()

	if s == nil {
		return nil
	}
	s.stopped.Store(true)
	if err := s.t.Send(stopCommand()); err != nil {
		e.logger.Debug(context.Background(), "Failed to send stop command: %v", err)
	}
	return s.t.Close()
}

// finish releases s if it is still the active session.
func (e *streamEngine) finish(s *session) {
	e.mu.Lock()
	if e.active == s {
		e.active = nil
	}
	e.mu.Unlock()
	s.t.Close()
}

func (e *streamEngine) readLoop(ctx context.Context, s *session, h Handler) {
	for {
		line, err := s.t.Receive()
		if err != nil {
			e.finish(s)
			if !s.stopped.Load() && !errors.Is(err, io.EOF) {
				h.OnError(fmt.Errorf("read event: %w", err))
			}
			h.OnEnd()
			return
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			e.logger.Warn(ctx, "Ignoring malformed event from %s: %v", e.name, err)
			continue
		}

		if batch, ok := ev.resultEvent(); ok {
			h.OnResult(batch)
			continue
		}

		switch ev.Event {
		case EventError:
			h.OnError(errors.New(ev.Message))
		case EventEnd:
			e.finish(s)
			h.OnEnd()
			return
		default:
			e.logger.Debug(ctx, "Ignoring event %q from %s", ev.Event, e.name)
		}
	}
}
