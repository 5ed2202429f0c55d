// Package capture turns speech-recognition callbacks into an ordered transcript
// plus a live preview of the utterance still being recognized.
package capture

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by Start when no recognition engine is available.
var ErrUnsupported = errors.New("speech recognition not supported")

// State is the capture toggle.
type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "idle"
}

// TranscriptEntry is one finalized utterance. Entries are never modified after creation.
type TranscriptEntry struct {
	ID        int64
	Speaker   string
	Text      string
	Timestamp string
}

// Observer is notified of every state change. Calls are made outside the capture lock,
// so an observer may read back from the Capture.
type Observer interface {
	// SessionReset fires when Start clears the transcript for a new session.
	SessionReset()
	UtteranceChanged(text string)
	// EntryAppended carries the new entry and a snapshot of the whole transcript.
	EntryAppended(entry TranscriptEntry, transcript []TranscriptEntry)
	// StateChanged carries the failure that caused the change, if any.
	StateChanged(state State, err error)
}

// Capture is the transcript capture component.
type Capture interface {
	// Supported reports the result of the capability query made at construction.
	Supported() bool
	// UnsupportedReason explains why Supported is false.
	UnsupportedReason() string

	// Start clears the transcript and begins continuous recognition.
	Start(ctx context.Context) error
	// Stop ends recognition. Stopping while idle is a no-op.
	Stop() error

	State() State
	Transcript() []TranscriptEntry
	CurrentUtterance() string
}
