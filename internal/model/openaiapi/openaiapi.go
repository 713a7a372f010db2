// Package openaiapi implements the model backends for the OpenAI remote API
// and for generic OpenAI-compatible APIs reached through a base URL override.
package openaiapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/clp-research/clembench-go/internal/model"
)

const (
	// BackendName is the registry name of the OpenAI backend.
	BackendName = "openai"
	// CompatibleBackendName is the registry name of the generic backend.
	CompatibleBackendName = "generic_openai_compatible"

	// maxRetries matches the retry budget of the original API clients.
	maxRetries = 3

	// contextLengthCode is the API error code for prompts over the model limit.
	contextLengthCode = "context_length_exceeded"
)

// Backend reaches an OpenAI-style chat completion API.
type Backend struct {
	name   string
	client openai.Client
	args   model.GenArgs
}

// New creates the OpenAI backend.
func New(creds model.BackendCredentials, args model.GenArgs) (*Backend, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrMissingCredentials, BackendName)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(creds.APIKey),
		option.WithMaxRetries(maxRetries),
	}
	if creds.Organisation != "" {
		opts = append(opts, option.WithOrganization(creds.Organisation))
	}
	if creds.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(creds.BaseURL))
	}
	return &Backend{name: BackendName, client: openai.NewClient(opts...), args: args}, nil
}

// NewCompatible creates a backend for an OpenAI-compatible API. A base URL is
// mandatory since there is no default endpoint to fall back to.
func NewCompatible(creds model.BackendCredentials, args model.GenArgs) (*Backend, error) {
	if strings.TrimSpace(creds.BaseURL) == "" {
		return nil, fmt.Errorf("%w: %q requires a base_url", model.ErrMissingCredentials, CompatibleBackendName)
	}
	backend, err := New(creds, args)
	if err != nil {
		return nil, err
	}
	backend.name = CompatibleBackendName
	return backend, nil
}

// Name returns the backend name.
func (b *Backend) Name() string { return b.name }

// ModelFor builds a chat model for the given spec.
func (b *Backend) ModelFor(spec model.Spec) (model.Model, error) {
	if spec.ModelName == "" {
		return nil, model.ErrEmptyModelName
	}
	return &chatModel{client: b.client, spec: spec, args: b.args}, nil
}

// ListModels returns the sorted model identifiers available on the API.
func (b *Backend) ListModels(ctx context.Context) ([]string, error) {
	page, err := b.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	names := make([]string, 0, len(page.Data))
	for _, item := range page.Data {
		names = append(names, item.ID)
	}
	sort.Strings(names)
	return names, nil
}

type chatModel struct {
	client openai.Client
	spec   model.Spec
	args   model.GenArgs
}

func (m *chatModel) Name() string { return m.spec.ModelName }

func (m *chatModel) Generate(ctx context.Context, messages []model.Message) (model.Call, error) {
	if err := model.ValidateHistory(messages); err != nil {
		return model.Call{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.spec.EffectiveModelID()),
		Messages: encodeMessages(messages),
	}
	if m.spec.HasAttr("reasoning_model") {
		// Reasoning models reject sampling controls.
		params.Temperature = openai.Float(1)
	} else {
		params.Temperature = openai.Float(m.args.Temperature)
		params.MaxTokens = openai.Int(int64(m.args.MaxTokens))
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Call{}, wrapAPIError(err)
	}
	if len(completion.Choices) == 0 {
		return model.Call{}, model.ErrEmptyResponse
	}
	message := completion.Choices[0].Message
	if string(message.Role) != string(model.RoleAssistant) {
		return model.Call{}, fmt.Errorf("%w: %q", model.ErrUnexpectedRole, message.Role)
	}

	prompt := make([]model.Message, len(messages))
	copy(prompt, messages)
	return model.Call{
		Prompt: prompt,
		Raw:    json.RawMessage(completion.RawJSON()),
		Text:   strings.TrimSpace(message.Content),
	}, nil
}

// wrapAPIError surfaces context-limit failures as ContextExceededError so
// callers can distinguish them from transport errors.
func wrapAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Code == contextLengthCode {
		return &model.ContextExceededError{Message: apiErr.Message}
	}
	return fmt.Errorf("chat completion: %w", err)
}

func encodeMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	encoded := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, message := range messages {
		switch message.Role {
		case model.RoleSystem:
			encoded = append(encoded, openai.SystemMessage(message.Content))
		case model.RoleAssistant:
			encoded = append(encoded, openai.AssistantMessage(message.Content))
		default:
			encoded = append(encoded, openai.UserMessage(message.Content))
		}
	}
	return encoded
}
