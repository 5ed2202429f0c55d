package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/insight"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/nguyentantai21042004/call-companion/pkg/debounce"
)

const defaultQuietInterval = 2500 * time.Millisecond

// Options configures a Scheduler.
type Options struct {
	QuietInterval  time.Duration
	RequestTimeout time.Duration
	Logger         logger.Logger
	Metrics        *metrics.Metrics
	// OnChange is called after every State change, outside the scheduler lock.
	OnChange func(State)
}

type implScheduler struct {
	client   insight.Client
	debounce debounce.Debouncer
	timeout  time.Duration
	logger   logger.Logger
	metrics  *metrics.Metrics
	onChange func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	insights *insight.Insights
	inFlight int
	seq      uint64
	applied  uint64
	epoch    uint64
}

// New creates a Scheduler around client.
func New(client insight.Client, opts Options) Scheduler {
	if opts.QuietInterval <= 0 {
		opts.QuietInterval = defaultQuietInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.OnChange == nil {
		opts.OnChange = func(State) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &implScheduler{
		client:   client,
		debounce: debounce.New(opts.QuietInterval),
		timeout:  opts.RequestTimeout,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
		ctx:      ctx,
		cancel:   cancel,
	}
}
