// Package panel wires transcript capture to the insight scheduler and exposes
// one snapshot of everything the presentation layer draws.
package panel

import (
	"context"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
	"github.com/nguyentantai21042004/call-companion/internal/insight"
)

// Snapshot is a copy of the panel state. Capture and scheduler fields are read
// under separate locks, so a snapshot taken during an update may mix the two.
type Snapshot struct {
	Supported         bool
	UnsupportedReason string
	Capture           capture.State
	Transcript        []capture.TranscriptEntry
	Utterance         string
	Insights          *insight.Insights
	Generating        bool
	// LastError is the failure that last stopped capture. Cleared by Start.
	LastError error
}

// Panel is the companion panel.
type Panel interface {
	Start(ctx context.Context) error
	Stop() error
	// Toggle starts capture when idle and stops it when listening.
	Toggle(ctx context.Context) error
	// Refresh requests insights for the current transcript without waiting for the quiet interval.
	Refresh(ctx context.Context)

	Snapshot() Snapshot
	// Changes receives a value whenever the snapshot may have changed. Bursts are coalesced.
	Changes() <-chan struct{}

	Close()
}
