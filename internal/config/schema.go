package config

// Config holds deckgen configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Detection    DetectionCfg              `mapstructure:"detection" yaml:"detection"`
}

// LLMProviderCfg configures a flashcard generation provider.
type LLMProviderCfg struct {
	Type        string  `mapstructure:"type" yaml:"type"`                 // "openai", "anthropic", "ollama"
	Model       string  `mapstructure:"model" yaml:"model"`               // Model name
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`           // API key (supports ${ENV_VAR} syntax)
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`         // Override endpoint (ollama, proxies)
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`     // Response token budget
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default pipeline behavior.
type DefaultsCfg struct {
	LLMProvider   string `mapstructure:"llm_provider" yaml:"llm_provider"`       // Default generation provider
	MaxCards      int    `mapstructure:"max_cards" yaml:"max_cards"`             // Cards per chapter
	CardType      string `mapstructure:"card_type" yaml:"card_type"`             // "basic" or "cloze"
	Format        string `mapstructure:"format" yaml:"format"`                   // Chapter content format for prompts
	PagesPerChunk int    `mapstructure:"pages_per_chunk" yaml:"pages_per_chunk"` // Fallback PDF chunk size
	CacheEnabled  bool   `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	MaxWorkers    int    `mapstructure:"max_workers" yaml:"max_workers"` // Concurrent chapter generations
}

// DetectionCfg tunes the PDF structure distribution validator. The
// shipped values are empirical; heavily illustrated or reference-style
// books may need different ones.
type DetectionCfg struct {
	MinSectionWords     int     `mapstructure:"min_section_words" yaml:"min_section_words"`
	TinySectionRatio    float64 `mapstructure:"tiny_section_ratio" yaml:"tiny_section_ratio"`
	TopTwoConcentration float64 `mapstructure:"top_two_concentration" yaml:"top_two_concentration"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:        "openai",
				Model:       "gpt-4o",
				APIKey:      "${OPENAI_API_KEY}",
				MaxTokens:   4096,
				Temperature: 0.7,
				Enabled:     true,
			},
			"anthropic": {
				Type:        "anthropic",
				Model:       "claude-3-5-sonnet-latest",
				APIKey:      "${ANTHROPIC_API_KEY}",
				MaxTokens:   4096,
				Temperature: 0.7,
				Enabled:     false,
			},
			"ollama": {
				Type:        "ollama",
				Model:       "llama3.1",
				MaxTokens:   4096,
				Temperature: 0.7,
				Enabled:     false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:   "openai",
			MaxCards:      20,
			CardType:      "basic",
			Format:        "markdown",
			PagesPerChunk: 10,
			CacheEnabled:  true,
			MaxWorkers:    4,
		},
		Detection: DetectionCfg{
			MinSectionWords:     50,
			TinySectionRatio:    0.6,
			TopTwoConcentration: 0.85,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
