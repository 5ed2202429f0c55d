package insight

import "context"

// Insights is the structured result derived from a transcript.
type Insights struct {
	Summary       string   `json:"summary"`
	ActionItems   []string `json:"actionItems"`
	TalkingPoints []string `json:"talkingPoints"`
}

// Client turns a flattened transcript into Insights.
// RequestInsights returns nil on any failure and never panics.
type Client interface {
	RequestInsights(ctx context.Context, transcript string) *Insights
	// Mode names the variant ("gemini" or "mock") for logs and metrics.
	Mode() string
}
