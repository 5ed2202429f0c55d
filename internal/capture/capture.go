package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/nguyentantai21042004/call-companion/internal/speech"
)

const timestampLayout = "15:04"

func (c *implCapture) Supported() bool {
	return c.engine != nil
}

func (c *implCapture) UnsupportedReason() string {
	return c.unsupported
}

func (c *implCapture) Start(ctx context.Context) error {
	if c.engine == nil {
		return ErrUnsupported
	}

	c.mu.Lock()
	if c.state == Listening {
		c.mu.Unlock()
		return nil
	}
	token := uuid.New()
	c.token = token
	c.state = Listening
	c.transcript = nil
	c.utterance = ""
	c.mu.Unlock()

	c.observer.SessionReset()
	c.observer.UtteranceChanged("")
	c.observer.StateChanged(Listening, nil)

	h := &sessionHandler{c: c, token: token, ctx: context.WithoutCancel(ctx)}
	if err := c.engine.Start(ctx, h); err != nil {
		err = fmt.Errorf("start recognition: %w", err)
		c.logger.Error(ctx, "Could not start speech recognition: %v", err)
		c.toIdle(token, err)
		return err
	}

	// Stop may have run while the engine was still opening the session.
	if !c.live(token) {
		if err := c.engine.Stop(); err != nil {
			c.logger.Debug(ctx, "Stop after late start failed: %v", err)
		}
		return nil
	}

	c.logger.Info(ctx, "Listening (session %s)", token)
	return nil
}

func (c *implCapture) Stop() error {
	if c.engine == nil {
		return nil
	}

	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return nil
	}
	c.state = Idle
	c.token = uuid.Nil
	c.mu.Unlock()

	c.observer.StateChanged(Idle, nil)

	if err := c.engine.Stop(); err != nil {
		return fmt.Errorf("stop recognition: %w", err)
	}
	return nil
}

func (c *implCapture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *implCapture) Transcript() []TranscriptEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TranscriptEntry(nil), c.transcript...)
}

func (c *implCapture) CurrentUtterance() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.utterance
}

// live reports whether callbacks bound to token may still act.
func (c *implCapture) live(token uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Listening && c.token == token
}

// toIdle moves the session owning token to Idle and reports err.
// It does nothing if that session is no longer current.
func (c *implCapture) toIdle(token uuid.UUID, err error) bool {
	c.mu.Lock()
	if c.state != Listening || c.token != token {
		c.mu.Unlock()
		return false
	}
	c.state = Idle
	c.token = uuid.Nil
	c.mu.Unlock()

	c.observer.StateChanged(Idle, err)
	return true
}

func (c *implCapture) handleResult(token uuid.UUID, ev speech.ResultEvent) {
	var interim, final strings.Builder
	start := ev.ResultIndex
	if start < 0 {
		start = 0
	}
	for i := start; i < len(ev.Results); i++ {
		if ev.Results[i].IsFinal {
			final.WriteString(ev.Results[i].Transcript)
		} else {
			interim.WriteString(ev.Results[i].Transcript)
		}
	}

	c.mu.Lock()
	if c.state != Listening || c.token != token {
		c.mu.Unlock()
		return
	}

	c.utterance = interim.String()
	if final.Len() == 0 {
		utterance := c.utterance
		c.mu.Unlock()
		c.observer.UtteranceChanged(utterance)
		return
	}

	now := c.now()
	id := now.UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id

	entry := TranscriptEntry{
		ID:        id,
		Speaker:   c.speaker,
		Text:      strings.TrimSpace(final.String()),
		Timestamp: now.Format(timestampLayout),
	}
	c.transcript = append(c.transcript, entry)
	c.utterance = ""
	snapshot := append([]TranscriptEntry(nil), c.transcript...)
	c.mu.Unlock()

	c.metrics.EntryAppended()
	c.observer.UtteranceChanged("")
	c.observer.EntryAppended(entry, snapshot)
}

func (c *implCapture) handleError(ctx context.Context, token uuid.UUID, err error) {
	c.logger.Error(ctx, "Speech recognition error: %v", err)
	if !c.toIdle(token, fmt.Errorf("recognition: %w", err)) {
		return
	}
	if stopErr := c.engine.Stop(); stopErr != nil {
		c.logger.Debug(ctx, "Stop after recognition error failed: %v", stopErr)
	}
}

// handleEnd restarts a session the engine ended on its own. One attempt only.
func (c *implCapture) handleEnd(ctx context.Context, h *sessionHandler) {
	if !c.live(h.token) {
		return
	}

	c.logger.Debug(ctx, "Recognition ended while listening, restarting")
	if err := c.engine.Start(ctx, h); err != nil {
		c.metrics.CaptureRestart(metrics.OutcomeFailure)
		c.logger.Error(ctx, "Error restarting recognition: %v", err)
		c.toIdle(h.token, fmt.Errorf("restart recognition: %w", err))
		return
	}
	c.metrics.CaptureRestart(metrics.OutcomeSuccess)

	if !c.live(h.token) {
		if err := c.engine.Stop(); err != nil {
			c.logger.Debug(ctx, "Stop after late restart failed: %v", err)
		}
	}
}

// sessionHandler binds engine callbacks to the capture session that started them.
type sessionHandler struct {
	c     *implCapture
	token uuid.UUID
	ctx   context.Context
}

func (h *sessionHandler) OnResult(ev speech.ResultEvent) {
	h.c.handleResult(h.token, ev)
}

func (h *sessionHandler) OnError(err error) {
	h.c.handleError(h.ctx, h.token, err)
}

func (h *sessionHandler) OnEnd() {
	h.c.handleEnd(h.ctx, h)
}
