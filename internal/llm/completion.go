package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

// DefaultCompletionModel is the model used when none is configured.
const DefaultCompletionModel = "llama-3.3-70b-versatile"

// ErrNoChoices is returned when the provider responds without any choices
var ErrNoChoices = errors.New("no completion choices returned")

// CompletionAPI defines the interface for chat completion generation
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
}

// CompletionClient wraps an OpenAI-compatible chat completion API. It never
// retries and relies on the transport's default timeout.
type CompletionClient struct {
	api   CompletionAPI
	model string
}

// ChatAdapter calls a real OpenAI-compatible endpoint.
type ChatAdapter struct {
	client *openai.Client
}

// NewChatAdapter creates an adapter for the given credential and base URL.
// An empty baseURL targets api.openai.com; Groq and other compatible
// providers are reached by overriding it.
func NewChatAdapter(apiKey, baseURL string) *ChatAdapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &ChatAdapter{client: openai.NewClientWithConfig(cfg)}
}

// CreateChatCompletion calls the provider and returns the first choice.
func (a *ChatAdapter) CreateChatCompletion(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewCompletionClient creates a completion client for an OpenAI-compatible
// provider. A client built without an API key is still usable; Complete
// reports domain.ErrLLMNotConfigured so callers can degrade gracefully.
func NewCompletionClient(cfg CompletionConfig) *CompletionClient {
	model := cfg.Model
	if model == "" {
		model = DefaultCompletionModel
	}

	var api CompletionAPI
	if cfg.APIKey != "" {
		api = NewChatAdapter(cfg.APIKey, cfg.BaseURL)
	}

	return &CompletionClient{
		api:   api,
		model: model,
	}
}

// NewCompletionClientWithAPI creates a client over an explicit API, used by
// tests to substitute fakes.
func NewCompletionClientWithAPI(api CompletionAPI, model string) *CompletionClient {
	if model == "" {
		model = DefaultCompletionModel
	}
	return &CompletionClient{api: api, model: model}
}

// Complete sends the ordered message sequence and returns the generated text.
// Missing credentials surface as domain.ErrLLMNotConfigured; provider or
// transport failures are wrapped as UPSTREAM_ERROR.
func (c *CompletionClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c.api == nil {
		return "", domain.ErrLLMNotConfigured
	}

	if len(messages) == 0 {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "message sequence cannot be empty")
	}

	text, err := c.api.CreateChatCompletion(ctx, c.model, messages)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			fmt.Sprintf("completion request failed (model %s)", c.model), err)
	}

	return text, nil
}
