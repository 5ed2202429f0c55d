package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const tracerName = "insight"

const insightPrompt = "Based on the following meeting transcript, please provide a summary, action items, and talking points. \n\nTranscript:\n%s"

// generator is the slice of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiClient struct {
	gen     generator
	model   string
	logger  logger.Logger
	metrics *metrics.Metrics
}

// responseSchema constrains the model output to exactly the Insights fields.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "A brief, rolling summary of the conversation so far. Should be no more than 2-3 sentences.",
		},
		"actionItems": {
			Type:        genai.TypeArray,
			Description: "A list of clear, concise action items identified from the conversation. Each item should be a short string.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"talkingPoints": {
			Type:        genai.TypeArray,
			Description: "A list of suggested talking points or follow-up questions to guide the conversation or explore topics further. Each item should be a short string.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"summary", "actionItems", "talkingPoints"},
}

func (c *geminiClient) Mode() string { return ModeGemini }

// RequestInsights sends one structured-output request and validates the reply.
func (c *geminiClient) RequestInsights(ctx context.Context, transcript string) *Insights {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "insight.generate",
		trace.WithAttributes(
			attribute.String("model", c.model),
			attribute.Int("transcript_bytes", len(transcript)),
		),
	)
	defer span.End()

	insights, err := c.generate(ctx, transcript)
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, ErrMalformedResponse) {
			outcome = metrics.OutcomeInvalid
		}
		c.logger.Error(ctx, "Error generating insights from Gemini: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.metrics.ObserveInsight(ModeGemini, outcome, time.Since(start))
		return nil
	}

	c.metrics.ObserveInsight(ModeGemini, metrics.OutcomeSuccess, time.Since(start))
	return insights
}

func (c *geminiClient) generate(ctx context.Context, transcript string) (insights *Insights, err error) {
	defer func() {
		if r := recover(); r != nil {
			insights, err = nil, fmt.Errorf("generate content panicked: %v", r)
		}
	}()

	prompt := fmt.Sprintf(insightPrompt, transcript)
	result, err := c.gen.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	// Text skips thought parts.
	return Parse([]byte(strings.TrimSpace(result.Text())))
}
