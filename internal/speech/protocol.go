package speech

// Command is sent from the companion to the recognition service.
type Command struct {
	Cmd            string `json:"cmd"`
	Locale         string `json:"locale,omitempty"`
	Continuous     bool   `json:"continuous,omitempty"`
	InterimResults bool   `json:"interimResults,omitempty"`
}

// Response acknowledges a command.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Event is streamed by the recognition service after a successful start.
type Event struct {
	Event       string   `json:"event"`
	Text        string   `json:"text,omitempty"`
	ResultIndex int      `json:"resultIndex,omitempty"`
	Results     []Result `json:"results,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// Event names.
const (
	EventPartial = "partial"
	EventSegment = "segment"
	EventResults = "results"
	EventError   = "error"
	EventEnd     = "end"
)

func startCommand(locale string) Command {
	return Command{
		Cmd:            "start",
		Locale:         locale,
		Continuous:     true,
		InterimResults: true,
	}
}

func stopCommand() Command {
	return Command{Cmd: "stop"}
}

// resultEvent converts a result-bearing event into a batch. ok is false for other events.
func (ev Event) resultEvent() (ResultEvent, bool) {
	switch ev.Event {
	case EventPartial:
		return ResultEvent{Results: []Result{{Transcript: ev.Text}}}, true
	case EventSegment:
		return ResultEvent{Results: []Result{{Transcript: ev.Text, IsFinal: true}}}, true
	case EventResults:
		return ResultEvent{ResultIndex: ev.ResultIndex, Results: ev.Results}, true
	default:
		return ResultEvent{}, false
	}
}
