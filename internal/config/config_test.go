package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) == 0 {
		t.Error("expected default LLM providers")
	}
	openai, ok := cfg.GetLLMProvider("openai")
	if !ok {
		t.Fatal("expected openai provider")
	}
	if openai.APIKey != "${OPENAI_API_KEY}" {
		t.Error("expected openai API key placeholder")
	}
	if cfg.Defaults.LLMProvider != "openai" {
		t.Errorf("default provider = %s", cfg.Defaults.LLMProvider)
	}
	if cfg.Defaults.PagesPerChunk != 10 {
		t.Errorf("pages per chunk = %d", cfg.Defaults.PagesPerChunk)
	}
	if cfg.Detection.TinySectionRatio != 0.6 {
		t.Errorf("tiny section ratio = %v", cfg.Detection.TinySectionRatio)
	}
}

func TestEnabledLLMProviders(t *testing.T) {
	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"on":  {Type: "openai", Enabled: true},
			"off": {Type: "ollama", Enabled: false},
		},
	}

	enabled := cfg.EnabledLLMProviders()
	if len(enabled) != 1 {
		t.Fatalf("enabled = %d, want 1", len(enabled))
	}
	if _, ok := enabled["on"]; !ok {
		t.Error("expected the enabled provider")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ResolvedProvider(t *testing.T) {
	os.Setenv("TEST_DECKGEN_KEY", "sk-123")
	defer os.Unsetenv("TEST_DECKGEN_KEY")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai":  {Type: "openai", APIKey: "${TEST_DECKGEN_KEY}"},
			"literal": {Type: "openai", APIKey: "direct-key"},
		},
	}

	t.Run("resolves env var reference", func(t *testing.T) {
		p, ok := cfg.ResolvedProvider("openai")
		if !ok || p.APIKey != "sk-123" {
			t.Errorf("expected sk-123, got %q (ok=%v)", p.APIKey, ok)
		}
	})

	t.Run("returns literal value", func(t *testing.T) {
		p, ok := cfg.ResolvedProvider("literal")
		if !ok || p.APIKey != "direct-key" {
			t.Errorf("expected direct-key, got %q (ok=%v)", p.APIKey, ok)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, ok := cfg.ResolvedProvider("missing"); ok {
			t.Error("expected miss for unknown provider")
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
llm_providers:
  local:
    type: ollama
    model: llama3.1
    enabled: true
defaults:
  llm_provider: local
  max_cards: 15
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		local, ok := cfg.GetLLMProvider("local")
		if !ok {
			t.Fatal("expected provider from config file")
		}
		if local.Model != "llama3.1" {
			t.Errorf("model = %s", local.Model)
		}
		if cfg.Defaults.LLMProvider != "local" {
			t.Errorf("default provider = %s", cfg.Defaults.LLMProvider)
		}
		if cfg.Defaults.MaxCards != 15 {
			t.Errorf("max cards = %d", cfg.Defaults.MaxCards)
		}
	})
}

func TestManager_OnChange(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
defaults:
  max_cards: 10
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 2 {
		t.Errorf("expected 2 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# deckgen configuration") {
		t.Error("missing header comment")
	}
	if !strings.Contains(content, "llm_providers:") {
		t.Error("missing llm_providers section")
	}
	if !strings.Contains(content, "${OPENAI_API_KEY}") {
		t.Error("missing env var placeholder")
	}

	// The generated file must load back cleanly.
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if mgr.Get().Defaults.MaxCards != 20 {
		t.Errorf("round-tripped max cards = %d", mgr.Get().Defaults.MaxCards)
	}
}
