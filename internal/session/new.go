package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
)

// Options configures a Bootstrapper.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

type implBootstrapper struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  logger.Logger
	metrics *metrics.Metrics

	once  sync.Once
	mu    sync.Mutex
	state State
}

// New creates a Bootstrapper for the endpoint at url.
func New(url string, opts Options) Bootstrapper {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &implBootstrapper{
		url:     url,
		client:  client,
		timeout: opts.Timeout,
		logger:  log,
		metrics: opts.Metrics,
		state:   State{Status: Loading},
	}
}
