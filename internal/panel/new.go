package panel

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
	"github.com/nguyentantai21042004/call-companion/internal/insight"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/nguyentantai21042004/call-companion/internal/scheduler"
	"github.com/nguyentantai21042004/call-companion/internal/speech"
)

// Options configures a Panel.
type Options struct {
	Speaker        string
	QuietInterval  time.Duration
	RequestTimeout time.Duration
	Logger         logger.Logger
	Metrics        *metrics.Metrics
}

type implPanel struct {
	capture   capture.Capture
	scheduler scheduler.Scheduler
	logger    logger.Logger

	changes chan struct{}

	mu      sync.Mutex
	lastErr error
}

// New builds the capture and scheduler components around the capability and client.
func New(capability speech.Capability, client insight.Client, opts Options) Panel {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	p := &implPanel{
		logger:  log,
		changes: make(chan struct{}, 1),
	}

	p.scheduler = scheduler.New(client, scheduler.Options{
		QuietInterval:  opts.QuietInterval,
		RequestTimeout: opts.RequestTimeout,
		Logger:         log,
		Metrics:        opts.Metrics,
		OnChange:       func(scheduler.State) { p.notify() },
	})

	p.capture = capture.New(capability,
		capture.WithSpeaker(opts.Speaker),
		capture.WithLogger(log),
		capture.WithMetrics(opts.Metrics),
		capture.WithObserver(p),
	)

	return p
}
