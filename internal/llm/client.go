// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

// Package llm is the HTTP client for the text-generation completion endpoint.
//
// Requests are rate limited, bounded by a timeout and guarded by a circuit
// breaker. The endpoint receives
//
//	{"prompt": "...", "max_tokens": 100, "temperature": 0.7}
//
// with a Bearer token, and may answer with any of
//
//	{"choices": "15,2,4"}
//	{"choices": [{"text": "15,2,4"}]}
//	{"choices": [{"message": {"content": "15,2,4"}}]}
//	{"text": "15,2,4"}
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tuneisland/internal/metrics"
	"github.com/tomtom215/tuneisland/internal/recommend"
)

const breakerName = "llm"

var (
	// ErrEmptyResponse is returned when the response carries no text.
	ErrEmptyResponse = errors.New("completion response has no text")

	// ErrNotConfigured is returned when no endpoint URL is set.
	ErrNotConfigured = errors.New("completion endpoint not configured")
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Config configures the client.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration

	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Client calls the completion endpoint.
// It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	url     string
	timeout time.Duration
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[string]
	logger  zerolog.Logger
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices json.RawMessage `json:"choices"`
	Text    string          `json:"text"`
}

type completionChoice struct {
	Text    string `json:"text"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// NewClient creates a completion client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger = logger.With().Str("component", "llm").Logger()

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "TuneIsland/1.0").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := max(cfg.RateBurst, 1)

	return &Client{
		http:    httpClient,
		url:     cfg.URL,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(limit, burst),
		cb:      newBreaker(logger),
		logger:  logger,
	}, nil
}

// Complete sends prompt to the endpoint and returns the generated text.
// Every error it returns matches recommend.ErrExternalService; a non-2xx
// answer is also reachable as *StatusError.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", recommend.ErrExternalService, err)
	}

	start := time.Now()
	text, err := c.execute(func() (string, error) {
		return c.post(ctx, completionRequest{
			Prompt:      prompt,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
	})

	status := "success"
	switch {
	case isRejected(err):
		status = "rejected"
	case err != nil:
		status = "error"
	}
	metrics.RecordLLMRequest(status, time.Since(start))

	if err != nil {
		return "", fmt.Errorf("%w: %w", recommend.ErrExternalService, err)
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, body completionRequest) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}

	if !resp.IsSuccess() {
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 200)}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode()).
		Dur("latency", resp.Time()).
		Msg("completion received")

	return extractText(resp.Body())
}

// extractText reads the generated text from any supported response shape.
func extractText(body []byte) (string, error) {
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(resp.Choices) > 0 {
		switch resp.Choices[0] {
		case '"':
			var s string
			if err := json.Unmarshal(resp.Choices, &s); err != nil {
				return "", fmt.Errorf("decode choices: %w", err)
			}
			if s != "" {
				return s, nil
			}
		case '[':
			var choices []completionChoice
			if err := json.Unmarshal(resp.Choices, &choices); err != nil {
				return "", fmt.Errorf("decode choices: %w", err)
			}
			for _, ch := range choices {
				if ch.Text != "" {
					return ch.Text, nil
				}
				if ch.Message.Content != "" {
					return ch.Message.Content, nil
				}
			}
		}
	}

	if resp.Text != "" {
		return resp.Text, nil
	}
	return "", ErrEmptyResponse
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
