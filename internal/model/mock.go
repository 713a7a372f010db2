package model

import (
	"context"
	"sync"
)

// MockBackendName is the backend name of the canned-response backend.
const MockBackendName = "mock"

const mockDefaultResponse = "mock response"

// MockBackend produces ScriptedModel instances for dry runs and tests.
type MockBackend struct{}

// Name returns the backend name.
func (MockBackend) Name() string { return MockBackendName }

// ModelFor builds a scripted model that always answers with a placeholder.
func (MockBackend) ModelFor(spec Spec) (Model, error) {
	return NewScriptedModel(spec.ModelName), nil
}

// ScriptedModel replays queued responses and falls back to a constant
// placeholder once the queue is drained. It is safe for concurrent use so a
// single instance can serve parallel episodes.
type ScriptedModel struct {
	name string

	mu       sync.Mutex
	queue    []string
	fallback string
}

// NewScriptedModel creates a scripted model with the given queued responses.
func NewScriptedModel(name string, responses ...string) *ScriptedModel {
	return &ScriptedModel{name: name, queue: responses, fallback: mockDefaultResponse}
}

// SetFallback replaces the response used once the queue is drained.
func (m *ScriptedModel) SetFallback(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// Enqueue appends responses to the script.
func (m *ScriptedModel) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
}

// Name returns the model name.
func (m *ScriptedModel) Name() string { return m.name }

// Generate returns the next scripted response.
func (m *ScriptedModel) Generate(ctx context.Context, messages []Message) (Call, error) {
	if err := ctx.Err(); err != nil {
		return Call{}, err
	}
	if err := ValidateHistory(messages); err != nil {
		return Call{}, err
	}

	m.mu.Lock()
	text := m.fallback
	if len(m.queue) > 0 {
		text = m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	prompt := make([]Message, len(messages))
	copy(prompt, messages)
	return Call{Prompt: prompt, Text: text}, nil
}
