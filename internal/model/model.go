// Package model defines the uniform interface over heterogeneous chat model
// APIs: message types, model specifications, backend registration and
// credential loading.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	// ErrUnexpectedRole indicates a provider response not authored by the assistant.
	ErrUnexpectedRole = errors.New("response message role is not assistant")
	// ErrEmptyResponse indicates a provider response without content.
	ErrEmptyResponse = errors.New("response message is empty")
	// ErrUnknownBackend indicates a spec referencing an unregistered backend.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Message is one entry of a chat history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Call captures one model invocation: the prompt that was sent, the raw
// provider response and the extracted response text.
type Call struct {
	Prompt []Message       `json:"prompt"`
	Raw    json.RawMessage `json:"raw,omitempty"`
	Text   string          `json:"text"`
}

// GenArgs holds the text generation parameters shared by all backends.
type GenArgs struct {
	Temperature float64
	MaxTokens   int
}

// Model produces chat completions for a message history.
type Model interface {
	// Name returns the model name used in records and result paths.
	Name() string
	// Generate requests a completion for the given message history.
	Generate(ctx context.Context, messages []Message) (Call, error)
}

// ContextExceededError reports that a prompt exceeded the context limit of a
// model. Backends fill in the token counts when the provider reports them and
// Message otherwise.
type ContextExceededError struct {
	Message     string
	TokensUsed  int
	TokensLeft  int
	ContextSize int
}

func (e *ContextExceededError) Error() string {
	if e.Message != "" {
		return "context limit exceeded: " + e.Message
	}
	return fmt.Sprintf("context limit exceeded %d/%d", e.TokensUsed, e.ContextSize)
}

// ValidateHistory checks the message history invariants shared by backends:
// at least one message, an optional system message only at the front, and
// strictly alternating user/assistant messages ending with a user message.
func ValidateHistory(messages []Message) error {
	if len(messages) == 0 {
		return errors.New("message history is empty")
	}
	start := 0
	if messages[0].Role == RoleSystem {
		start = 1
	}
	if start == len(messages) {
		return errors.New("message history has only a system message")
	}
	expected := RoleUser
	for i := start; i < len(messages); i++ {
		if messages[i].Role == RoleSystem {
			return fmt.Errorf("system message at position %d", i)
		}
		if messages[i].Role != expected {
			return fmt.Errorf("message at position %d has role %q, want %q", i, messages[i].Role, expected)
		}
		if expected == RoleUser {
			expected = RoleAssistant
		} else {
			expected = RoleUser
		}
	}
	if messages[len(messages)-1].Role != RoleUser {
		return errors.New("message history must end with a user message")
	}
	return nil
}
