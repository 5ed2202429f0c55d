// Package scheduler debounces transcript growth into insight requests.
package scheduler

import (
	"context"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
	"github.com/nguyentantai21042004/call-companion/internal/insight"
)

// State is what the presentation layer renders for the insights panel.
type State struct {
	// Insights is nil until the first successful response of the current session.
	Insights *insight.Insights
	// Generating is true while at least one request is outstanding.
	Generating bool
}

// Scheduler holds at most one pending insight request.
type Scheduler interface {
	// TranscriptGrew supersedes any pending request with one for transcript,
	// issued after the quiet interval.
	TranscriptGrew(transcript []capture.TranscriptEntry)
	// RefreshNow requests insights for transcript immediately and waits for the result.
	RefreshNow(ctx context.Context, transcript []capture.TranscriptEntry)
	// Reset drops pending work and insights for a new capture session.
	// Responses to requests issued before Reset are discarded.
	Reset()
	State() State
	// Close cancels pending and in-flight requests.
	Close()
}
