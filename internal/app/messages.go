package app

import (
	"github.com/nguyentantai21042004/call-companion/internal/panel"
	"github.com/nguyentantai21042004/call-companion/internal/session"
)

// SessionResolvedMsg carries the terminal bootstrap state.
type SessionResolvedMsg struct {
	State session.State
}

// PanelChangedMsg carries a fresh panel snapshot.
type PanelChangedMsg struct {
	Snapshot panel.Snapshot
}

// ToggleResultMsg reports the outcome of a start/stop request.
type ToggleResultMsg struct {
	Err error
}

// RoomOpenedMsg reports the outcome of opening the room in the browser.
type RoomOpenedMsg struct {
	Err error
}

// RefreshDoneMsg is sent when a manual insight refresh settled.
type RefreshDoneMsg struct{}
