// Package speech provides the speech-recognition engines the capture component drives
// and the capability query that decides whether one is available.
package speech

import "context"

// Result is one recognition fragment.
type Result struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"isFinal"`
}

// ResultEvent is a batch of fragments. Fragments before ResultIndex were already reported.
type ResultEvent struct {
	ResultIndex int      `json:"resultIndex"`
	Results     []Result `json:"results"`
}

// Handler receives engine callbacks. Callbacks may arrive on any goroutine,
// including after Stop has been requested.
type Handler interface {
	OnResult(ev ResultEvent)
	OnError(err error)
	OnEnd()
}

// Engine is a continuous recognizer with interim results enabled.
type Engine interface {
	// Start begins a recognition session delivering callbacks to h.
	// It fails synchronously when the session cannot be opened.
	Start(ctx context.Context, h Handler) error
	// Stop requests the end of the current session; OnEnd follows.
	Stop() error
}

// Capability is the result of the platform capability query: Supported or Unsupported.
type Capability interface {
	isCapability()
}

// Supported carries the engine handle.
type Supported struct {
	Engine Engine
}

// Unsupported explains why no engine is available.
type Unsupported struct {
	Reason string
}

func (Supported) isCapability()   {}
func (Unsupported) isCapability() {}
