package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

const (
	OllamaName         = "ollama"
	ollamaDefaultModel = "llama3.1"
)

// OllamaClient implements LLMClient against a local Ollama server.
// No API key is required.
type OllamaClient struct {
	name         string
	defaultModel string
	maxTokens    int
	temperature  float64
	client       *api.Client
}

// NewOllamaClient creates a client for the Ollama HTTP API. An empty
// BaseURL falls back to the OLLAMA_HOST environment configuration.
func NewOllamaClient(name string, cfg ClientConfig) (*OllamaClient, error) {
	if name == "" {
		name = OllamaName
	}
	if cfg.Model == "" {
		cfg.Model = ollamaDefaultModel
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base URL %q: %w", cfg.BaseURL, err)
		}
		base = parsed
	} else {
		base = envconfig.Host()
	}

	return &OllamaClient{
		name:         name,
		defaultModel: cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		client:       api.NewClient(base, http.DefaultClient),
	}, nil
}

// Name returns the client identifier.
func (c *OllamaClient) Name() string { return c.name }

// Generate runs a streaming generate request, accumulating the response.
func (c *OllamaClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	options := map[string]interface{}{}
	if temperature > 0 {
		options["temperature"] = temperature
	}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}

	var (
		sb               strings.Builder
		promptTokens     int
		completionTokens int
		modelUsed        string
	)
	err := c.client.Generate(ctx, &api.GenerateRequest{
		Model:   model,
		Prompt:  req.Prompt,
		System:  req.System,
		Options: options,
	}, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		if resp.Done {
			promptTokens = resp.PromptEvalCount
			completionTokens = resp.EvalCount
			modelUsed = resp.Model
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if modelUsed == "" {
		modelUsed = model
	}

	return &GenerateResult{
		Content:          sb.String(),
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Provider:         c.name,
		ModelUsed:        modelUsed,
		ExecutionTime:    time.Since(start),
		RequestID:        requestID,
	}, nil
}
