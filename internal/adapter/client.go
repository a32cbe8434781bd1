package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client implements Adapter against an OpenAI-compatible chat completions
// endpoint. Every call carries a bounded timeout; exceeding it surfaces as
// a transient failure.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client from a finalized configuration.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "adapter"),
	}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Messages       []chatMessage     `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

func (c *Client) Invoke(ctx context.Context, unitName string, req Request) (*Response, error) {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.TimeoutDuration())
	defer cancel()

	body := chatRequest{
		Model:          c.cfg.Model,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
	}

	parsed, err := c.post(callCtx, body)
	if err != nil {
		return nil, err
	}

	if len(parsed.Choices) == 0 {
		return nil, Permanent(fmt.Errorf("no choices in completion response"))
	}

	c.logger.InfoContext(
		ctx, "adapter invocation complete",
		"unit", unitName,
		"model", c.cfg.Model,
		"total_tokens", parsed.Usage.TotalTokens,
		"duration", time.Since(start),
	)

	return &Response{
		Content: strings.TrimSpace(parsed.Choices[0].Message.Content),
		Usage:   parsed.Usage,
	}, nil
}

func (c *Client) post(ctx context.Context, body chatRequest) (*chatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, Permanent(fmt.Errorf("marshal request: %w", err))
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, Permanent(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, Transient(fmt.Errorf("completion request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(fmt.Errorf("read response: %w", err))
	}

	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, Permanent(fmt.Errorf("decode response: %w", err))
	}

	return &parsed, nil
}

// classifyStatus maps HTTP status codes to the transient/permanent taxonomy.
// Throttling (429), request timeout (408), and server errors are transient;
// every other non-2xx status is a permanent rejection.
func classifyStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	err := fmt.Errorf("completion status %d: %s", status, truncate(body, 256))

	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusRequestTimeout,
		status >= 500:
		return Transient(err)
	default:
		return Permanent(err)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
