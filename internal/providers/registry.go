package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry holds the configured LLM clients, keyed by provider name.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients: make(map[string]LLMClient),
		logger:  logger,
	}
}

// NewRegistryFromConfig builds a registry from provider configuration.
// Disabled providers are skipped. Providers without an API key are
// skipped unless the type needs none (ollama).
func NewRegistryFromConfig(cfgs map[string]ClientConfig, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	if err := r.Reload(cfgs); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the registered clients with those built from cfgs.
func (r *Registry) Reload(cfgs map[string]ClientConfig) error {
	clients := make(map[string]LLMClient)
	for name, cfg := range cfgs {
		if !cfg.Enabled {
			r.logger.Debug("skipping disabled provider", "provider", name)
			continue
		}
		client, err := newClient(name, cfg)
		if err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
		if client == nil {
			r.logger.Warn("skipping provider with no API key", "provider", name)
			continue
		}
		clients[name] = client
	}

	r.mu.Lock()
	r.clients = clients
	r.mu.Unlock()

	r.logger.Info("provider registry loaded", "count", len(clients))
	return nil
}

func newClient(name string, cfg ClientConfig) (LLMClient, error) {
	switch cfg.Type {
	case "openai":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIClient(name, cfg), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewAnthropicClient(name, cfg), nil
	case "ollama":
		return NewOllamaClient(name, cfg)
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// Register adds or replaces a client.
func (r *Registry) Register(client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Name()] = client
}

// Unregister removes a client by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, name)
}

// Get returns the client registered under name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", name)
	}
	return client, nil
}

// Has reports whether a client is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
