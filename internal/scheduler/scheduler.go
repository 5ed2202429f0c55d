package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
)

// Flatten renders the transcript as "<speaker>: <text>" lines.
func Flatten(transcript []capture.TranscriptEntry) string {
	lines := make([]string, 0, len(transcript))
	for _, e := range transcript {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Speaker, e.Text))
	}
	return strings.Join(lines, "\n")
}

func (s *implScheduler) TranscriptGrew(transcript []capture.TranscriptEntry) {
	if len(transcript) == 0 {
		return
	}
	snapshot := append([]capture.TranscriptEntry(nil), transcript...)
	epoch := s.currentEpoch()
	s.debounce.Trigger(func() {
		s.generate(s.ctx, epoch, snapshot)
	})
}

func (s *implScheduler) RefreshNow(ctx context.Context, transcript []capture.TranscriptEntry) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	s.generate(ctx, s.currentEpoch(), transcript)
}

func (s *implScheduler) Reset() {
	s.debounce.Cancel()

	s.mu.Lock()
	s.epoch++
	s.insights = nil
	s.inFlight = 0
	s.applied = 0
	state := s.stateLocked()
	s.mu.Unlock()

	s.onChange(state)
}

func (s *implScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *implScheduler) Close() {
	s.debounce.Cancel()
	s.cancel()
}

func (s *implScheduler) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

func (s *implScheduler) stateLocked() State {
	return State{Insights: s.insights, Generating: s.inFlight > 0}
}

// generate issues one request for transcript on behalf of the session epoch.
// A successful response replaces the insights unless a newer response of the
// same epoch was already applied. Only requests of the current epoch count as in flight.
func (s *implScheduler) generate(ctx context.Context, epoch uint64, transcript []capture.TranscriptEntry) {
	if len(transcript) == 0 || ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.seq++
	id := s.seq
	s.inFlight++
	state := s.stateLocked()
	s.mu.Unlock()
	s.onChange(state)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Debug(ctx, "Requesting insights for %d transcript entries", len(transcript))
	result := s.client.RequestInsights(ctx, Flatten(transcript))

	s.mu.Lock()
	current := epoch == s.epoch
	if current {
		s.inFlight--
	}
	switch {
	case result == nil:
		s.logger.Warn(ctx, "Insight refresh failed, keeping previous insights")
	case !current || id < s.applied:
		s.metrics.StaleResponse()
		s.logger.Debug(ctx, "Dropping insights for superseded request %d", id)
	default:
		s.insights = result
		s.applied = id
	}
	state = s.stateLocked()
	s.mu.Unlock()
	s.onChange(state)
}
