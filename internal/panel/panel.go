package panel

import (
	"context"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
)

func (p *implPanel) Start(ctx context.Context) error {
	p.mu.Lock()
	p.lastErr = nil
	p.mu.Unlock()

	return p.capture.Start(ctx)
}

func (p *implPanel) Stop() error {
	return p.capture.Stop()
}

func (p *implPanel) Toggle(ctx context.Context) error {
	if p.capture.State() == capture.Listening {
		return p.Stop()
	}
	return p.Start(ctx)
}

func (p *implPanel) Refresh(ctx context.Context) {
	p.scheduler.RefreshNow(ctx, p.capture.Transcript())
}

func (p *implPanel) Snapshot() Snapshot {
	st := p.scheduler.State()

	p.mu.Lock()
	lastErr := p.lastErr
	p.mu.Unlock()

	return Snapshot{
		Supported:         p.capture.Supported(),
		UnsupportedReason: p.capture.UnsupportedReason(),
		Capture:           p.capture.State(),
		Transcript:        p.capture.Transcript(),
		Utterance:         p.capture.CurrentUtterance(),
		Insights:          st.Insights,
		Generating:        st.Generating,
		LastError:         lastErr,
	}
}

func (p *implPanel) Changes() <-chan struct{} {
	return p.changes
}

func (p *implPanel) Close() {
	if err := p.capture.Stop(); err != nil {
		p.logger.Warn(context.Background(), "Stop capture on close: %v", err)
	}
	p.scheduler.Close()
}

func (p *implPanel) notify() {
	select {
	case p.changes <- struct{}{}:
	default:
	}
}

// capture.Observer

func (p *implPanel) SessionReset() {
	p.scheduler.Reset()
}

func (p *implPanel) UtteranceChanged(string) {
	p.notify()
}

func (p *implPanel) EntryAppended(_ capture.TranscriptEntry, transcript []capture.TranscriptEntry) {
	p.scheduler.TranscriptGrew(transcript)
	p.notify()
}

func (p *implPanel) StateChanged(_ capture.State, err error) {
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
	}
	p.notify()
}
