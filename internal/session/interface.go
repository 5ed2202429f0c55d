// Package session resolves the video room URL once at startup.
package session

import "context"

// Status of the bootstrap flow.
type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// State is Loading until Run settles, then Ready with RoomURL or Failed with Message.
type State struct {
	Status  Status
	RoomURL string
	Message string
	Err     error
}

// Bootstrapper fetches the room URL from the session-provisioning endpoint.
type Bootstrapper interface {
	// Run issues the single provisioning request and returns the terminal state.
	// Later calls return the same state without another request.
	Run(ctx context.Context) State
	State() State
}
