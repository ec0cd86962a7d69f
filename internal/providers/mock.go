package providers

import (
	"context"
	"sync"
	"time"
)

// MockClient is an LLMClient for tests. It replays canned responses in
// order and records every request it receives.
type MockClient struct {
	mu        sync.Mutex
	name      string
	responses []string
	handler   func(*GenerateRequest) (string, error)
	err       error
	calls     []*GenerateRequest
}

// NewMockClient returns a mock that cycles through responses.
func NewMockClient(name string, responses ...string) *MockClient {
	return &MockClient{name: name, responses: responses}
}

// RespondWith installs a per-request handler, overriding the canned
// responses. Useful when requests arrive concurrently.
func (m *MockClient) RespondWith(fn func(*GenerateRequest) (string, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
	return m
}

// FailWith makes every Generate call return err.
func (m *MockClient) FailWith(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Name returns the client identifier.
func (m *MockClient) Name() string { return m.name }

// Calls returns a copy of the received requests.
func (m *MockClient) Calls() []*GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*GenerateRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate replays the next canned response.
func (m *MockClient) Generate(_ context.Context, req *GenerateRequest) (*GenerateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}

	var content string
	if m.handler != nil {
		var err error
		content, err = m.handler(req)
		if err != nil {
			return nil, err
		}
	} else if len(m.responses) > 0 {
		content = m.responses[(len(m.calls)-1)%len(m.responses)]
	}
	return &GenerateResult{
		Content:          content,
		PromptTokens:     len(req.Prompt) / 4,
		CompletionTokens: len(content) / 4,
		TotalTokens:      (len(req.Prompt) + len(content)) / 4,
		Provider:         m.name,
		ModelUsed:        "mock",
		ExecutionTime:    time.Millisecond,
		RequestID:        req.RequestID,
	}, nil
}
