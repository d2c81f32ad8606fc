package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/types"
)

// CompletionProvider is the outbound capability the analysis client depends on:
// submit a system instruction plus a user message, receive the provider's raw
// text content or fail. Implementations make exactly one network call.
type CompletionProvider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ProviderConfig configures the HTTP gateway provider from the environment.
type ProviderConfig struct {
	GatewayURL string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxTokens  int
}

// GatewayProvider talks to an OpenAI-compatible chat-completions gateway.
type GatewayProvider struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewGatewayProvider(cfg ProviderConfig) *GatewayProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	// No transport-level timeout: the per-call deadline comes from the
	// caller's context, with cfg.Timeout as fallback.
	return &GatewayProvider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (p *GatewayProvider) Complete(ctx context.Context, system, user string) (string, error) {
	log := logger.New().WithComponent("gateway-provider")

	if p.cfg.GatewayURL == "" || p.cfg.APIKey == "" {
		return "", types.NewError(types.ErrInternal, "llm gateway not configured")
	}

	reqBody := map[string]any{
		"model": p.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature":     0.0,
		"max_tokens":      p.cfg.MaxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}
	data, _ := json.Marshal(reqBody)

	// Retry policies set a per-attempt deadline; honor it and only fall
	// back to the configured timeout when the caller set none.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.cfg.GatewayURL, bytes.NewReader(data))
	if err != nil {
		return "", types.NewError(types.ErrInternal, "building gateway request failed").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", types.NewError(types.ErrUpstreamTimeout, "analysis provider timed out").WithCause(err)
		}
		return "", types.NewError(types.ErrInternal, "analysis provider unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.WithField("http_status", resp.StatusCode).Debug("gateway response received")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", types.NewError(types.ErrUpstreamAuth, "invalid analysis provider credentials")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", types.NewError(types.ErrUpstreamRateLimit, "analysis provider rate limit exceeded")
	case resp.StatusCode >= 500:
		return "", types.NewError(types.ErrInternal, "analysis provider server error").
			WithCause(fmt.Errorf("gateway status %d: %s", resp.StatusCode, truncate(body, 256)))
	case resp.StatusCode >= 400:
		return "", types.NewError(types.ErrInternal, "analysis provider rejected the request").
			WithCause(fmt.Errorf("gateway status %d: %s", resp.StatusCode, truncate(body, 256)))
	}

	return contentFromChoices(body), nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// contentFromChoices reads the openai-style choices[0].message.content field.
// Returns "" when the shape does not match; the client treats that as an empty
// response.
func contentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}

	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return content
}
