package insight

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/metrics"
)

// MockInsights is the fixed payload served when no API key is configured.
func MockInsights() *Insights {
	return &Insights{
		Summary: "This is a mock summary because the Gemini API key is not configured. The assistant provides real-time analysis of the conversation.",
		ActionItems: []string{
			"Mock Action: Finalize Q3 roadmap.",
			"Mock Action: Draft resource request for developers.",
		},
		TalkingPoints: []string{
			"Mock Suggestion: What are the key performance indicators (KPIs)?",
			"Mock Suggestion: Discuss potential risks and mitigation strategies.",
		},
	}
}

type mockClient struct {
	delay   time.Duration
	metrics *metrics.Metrics
}

func (c *mockClient) Mode() string { return ModeMock }

// RequestInsights waits out the simulated network delay and returns the mock payload.
// Cancellation only shortens the wait.
func (c *mockClient) RequestInsights(ctx context.Context, transcript string) *Insights {
	start := time.Now()
	if c.delay > 0 {
		t := time.NewTimer(c.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	c.metrics.ObserveInsight(ModeMock, metrics.OutcomeSuccess, time.Since(start))
	return MockInsights()
}
