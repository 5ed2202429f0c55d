package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/nguyentantai21042004/call-companion/internal/speech"
)

const defaultSpeaker = "Me"

type implCapture struct {
	engine      speech.Engine
	unsupported string

	speaker  string
	logger   logger.Logger
	metrics  *metrics.Metrics
	observer Observer
	now      func() time.Time

	mu         sync.Mutex
	state      State
	token      uuid.UUID
	transcript []TranscriptEntry
	utterance  string
	lastID     int64
}

// Option customizes a Capture.
type Option func(*implCapture)

// WithSpeaker sets the speaker label of the local user.
func WithSpeaker(name string) Option {
	return func(c *implCapture) {
		if name != "" {
			c.speaker = name
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *implCapture) { c.logger = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *implCapture) { c.metrics = m }
}

func WithObserver(o Observer) Option {
	return func(c *implCapture) { c.observer = o }
}

// WithClock replaces time.Now for entry IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *implCapture) { c.now = now }
}

// New creates a Capture from the capability query result. An Unsupported capability
// makes the component permanently inert.
func New(capability speech.Capability, opts ...Option) Capture {
	c := &implCapture{
		speaker:  defaultSpeaker,
		logger:   logger.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
	}

	switch v := capability.(type) {
	case speech.Supported:
		c.engine = v.Engine
	case speech.Unsupported:
		c.unsupported = v.Reason
	default:
		c.unsupported = "no speech capability"
	}
	if c.engine == nil && c.unsupported == "" {
		c.unsupported = "no speech engine"
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

type nopObserver struct{}

func (nopObserver) SessionReset()                                    {}
func (nopObserver) UtteranceChanged(string)                          {}
func (nopObserver) EntryAppended(TranscriptEntry, []TranscriptEntry) {}
func (nopObserver) StateChanged(State, error)                        {}
