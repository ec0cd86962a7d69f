// Package providers implements LLM clients for flashcard generation
// behind a single interface, with a config-driven registry that supports
// hot reload.
package providers

import (
	"context"
	"time"
)

// LLMClient is the interface every generation backend implements.
type LLMClient interface {
	// Generate sends a single prompt and returns the model's text.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// GenerateRequest is a request to an LLM.
type GenerateRequest struct {
	// System is the system prompt; may be empty.
	System string `json:"system,omitempty"`

	// Prompt is the user message.
	Prompt string `json:"prompt"`

	// Model selection (uses client default if empty).
	Model string `json:"model,omitempty"`

	// Generation parameters.
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking.
	RequestID string `json:"-"`
}

// GenerateResult is the complete response from an LLM call.
type GenerateResult struct {
	Content string `json:"content"`

	// Token counts; zero when the backend does not report usage.
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Provider info.
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Timing and tracking.
	ExecutionTime time.Duration `json:"execution_time"`
	RequestID     string        `json:"request_id"`
}

// ClientConfig holds the resolved settings for one provider instance.
type ClientConfig struct {
	Type        string  // "openai", "anthropic", "ollama"
	Model       string  // Default model
	APIKey      string  // Resolved API key
	BaseURL     string  // Optional endpoint override
	MaxTokens   int     // Default response budget
	Temperature float64 // Default temperature
	Enabled     bool
}
