package app

// Key binding constants used in handleKey.
const (
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeySpace    = " "
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeySummary  = "1"
	KeyActions  = "2"
	KeyTalk     = "3"
	KeyRefresh  = "r"
	KeyOpenRoom = "o"
)
