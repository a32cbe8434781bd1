// Package adapter defines the AI invocation contract consumed by processing
// units, with an OpenAI-compatible HTTP implementation. Adapter failures are
// classified as transient or permanent so callers can decide on retry and
// circuit breaker accounting.
package adapter

import "context"

// Request carries the structured input for a model invocation.
type Request struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Usage reports token consumption for cost computation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response carries the structured output and usage of a model invocation.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Adapter invokes an external AI service on behalf of a named unit.
// Errors satisfy IsTransient or IsPermanent.
type Adapter interface {
	Invoke(ctx context.Context, unitName string, req Request) (*Response, error)
}
