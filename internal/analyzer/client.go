package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/types"
)

// Client turns one feedback text into a normalized AnalysisResult through a
// single provider call. Retry policy lives with the caller, not here.
type Client struct {
	provider CompletionProvider
	log      *logrus.Entry
}

func NewClient(provider CompletionProvider) *Client {
	return &Client{
		provider: provider,
		log:      logger.New().WithComponent("analyzer"),
	}
}

// Analyze submits the feedback to the provider and normalizes the reply.
// Fails with UPSTREAM_EMPTY_RESPONSE when the provider returned no content and
// UPSTREAM_MALFORMED_RESPONSE when the content holds no decodable JSON object;
// normalization itself never fails.
func (c *Client) Analyze(ctx context.Context, feedback string) (types.AnalysisResult, error) {
	content, err := c.provider.Complete(ctx, systemInstruction, feedback)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	if strings.TrimSpace(content) == "" {
		return types.AnalysisResult{}, types.NewError(types.ErrEmptyResponse,
			"analysis provider returned an empty response, please retry")
	}

	raw := extractJSON(content)
	if raw == "" {
		c.log.WithField("content_len", len(content)).Warn("no JSON object in provider output")
		return types.AnalysisResult{}, types.NewError(types.ErrMalformedResponse,
			"analysis provider returned an unreadable response, please retry")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return types.AnalysisResult{}, types.NewError(types.ErrMalformedResponse,
			"analysis provider returned an unreadable response, please retry").WithCause(err)
	}

	return normalize(fields), nil
}
