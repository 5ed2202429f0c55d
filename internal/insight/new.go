package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"google.golang.org/genai"
)

// Client modes.
const (
	ModeGemini = "gemini"
	ModeMock   = "mock"
)

// Options configures the client variants.
type Options struct {
	APIKey    string
	Model     string
	MockDelay time.Duration
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// New returns the Gemini client when an API key is configured and the mock client otherwise.
// Construct it once at startup and share it.
func New(ctx context.Context, opts Options) (Client, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	if opts.APIKey == "" {
		log.Warn(ctx, "API key not set. AI features will use mock data.")
		return &mockClient{delay: opts.MockDelay, metrics: opts.Metrics}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return newGeminiClient(client.Models, opts.Model, log, opts.Metrics), nil
}

func newGeminiClient(gen generator, model string, log logger.Logger, m *metrics.Metrics) *geminiClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiClient{
		gen:     gen,
		model:   model,
		logger:  log,
		metrics: m,
	}
}
