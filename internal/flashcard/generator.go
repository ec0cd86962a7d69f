package flashcard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/deckgen/deckgen/internal/providers"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = 2 * time.Second
)

// Chapter is the generation input for a single section.
type Chapter struct {
	ID         string
	Title      string
	Content    string
	SourceFile string
}

// Generator produces flashcards for chapters through an LLM client.
type Generator struct {
	client      providers.LLMClient
	model       string
	maxCards    int
	temperature float64
	maxTokens   int
	attempts    uint
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithMaxCards caps the number of cards requested per prompt.
// Zero means exhaustive coverage.
func WithMaxCards(n int) Option {
	return func(g *Generator) { g.maxCards = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = t }
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithAttempts sets how many times a malformed response is retried.
func WithAttempts(n uint) Option {
	return func(g *Generator) {
		if n > 0 {
			g.attempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a Generator backed by client.
func NewGenerator(client providers.LLMClient, opts ...Option) *Generator {
	g := &Generator{
		client:   client,
		attempts: defaultAttempts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateBasic produces question-answer cards for a chapter.
func (g *Generator) GenerateBasic(ctx context.Context, ch Chapter) ([]BasicCard, *providers.GenerateResult, error) {
	prompt := buildBasicPrompt(ch.Title, ch.Content, g.maxCards)
	raw, res, err := g.complete(ctx, basicSystemPrompt, prompt, basicSchema)
	if err != nil {
		return nil, nil, fmt.Errorf("basic card generation for %s: %w", ch.ID, err)
	}

	var cards []BasicCard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, nil, fmt.Errorf("failed to decode basic cards: %w", err)
	}
	return cards, res, nil
}

// GenerateCloze produces cloze-deletion cards for a chapter. Cards
// without a {{c marker are dropped.
func (g *Generator) GenerateCloze(ctx context.Context, ch Chapter) ([]ClozeCard, *providers.GenerateResult, error) {
	prompt := buildClozePrompt(ch.Title, ch.Content, g.maxCards)
	raw, res, err := g.complete(ctx, clozeSystemPrompt, prompt, clozeSchema)
	if err != nil {
		return nil, nil, fmt.Errorf("cloze card generation for %s: %w", ch.ID, err)
	}

	var cards []ClozeCard
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, nil, fmt.Errorf("failed to decode cloze cards: %w", err)
	}

	kept := cards[:0]
	for _, c := range cards {
		if strings.Contains(c.Text, "{{c") {
			kept = append(kept, c)
		} else {
			g.logger.Warn("dropping cloze card without deletion marker",
				"chapter", ch.ID, "text", c.Text)
		}
	}
	return kept, res, nil
}

// Generate produces both basic and cloze cards for a chapter.
func (g *Generator) Generate(ctx context.Context, ch Chapter) (*GenerationResult, error) {
	start := time.Now()

	basic, basicRes, err := g.GenerateBasic(ctx, ch)
	if err != nil {
		return nil, err
	}
	cloze, clozeRes, err := g.GenerateCloze(ctx, ch)
	if err != nil {
		return nil, err
	}

	meta := GenerationMetadata{
		RunID:                 uuid.New().String(),
		ChapterID:             ch.ID,
		ChapterTitle:          ch.Title,
		SourceFile:            ch.SourceFile,
		GeneratedAt:           time.Now().UTC(),
		Provider:              g.client.Name(),
		ModelUsed:             basicRes.ModelUsed,
		BasicCount:            len(basic),
		ClozeCount:            len(cloze),
		TotalCount:            len(basic) + len(cloze),
		PromptTokens:          basicRes.PromptTokens + clozeRes.PromptTokens,
		CompletionTokens:      basicRes.CompletionTokens + clozeRes.CompletionTokens,
		GenerationTimeSeconds: time.Since(start).Seconds(),
	}

	g.logger.Info("generated flashcards",
		"chapter", ch.ID,
		"basic", meta.BasicCount,
		"cloze", meta.ClozeCount,
		"duration", time.Since(start))

	return &GenerationResult{
		Metadata:   meta,
		BasicCards: basic,
		ClozeCards: cloze,
	}, nil
}

// complete runs one prompt with parse/validate retries.
func (g *Generator) complete(ctx context.Context, system, prompt string, schema *jsonschema.Schema) (json.RawMessage, *providers.GenerateResult, error) {
	var (
		raw json.RawMessage
		res *providers.GenerateResult
	)

	err := retry.Do(
		func() error {
			r, err := g.client.Generate(ctx, &providers.GenerateRequest{
				System:      system,
				Prompt:      prompt,
				Model:       g.model,
				Temperature: g.temperature,
				MaxTokens:   g.maxTokens,
				RequestID:   uuid.New().String(),
			})
			if err != nil {
				return err
			}
			parsed, err := parseCardJSON(r.Content)
			if err != nil {
				return err
			}
			if err := validateCards(schema, parsed); err != nil {
				return err
			}
			raw, res = parsed, r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.attempts),
		retry.Delay(defaultRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			g.logger.Warn("retrying card generation", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return raw, res, nil
}
