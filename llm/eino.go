package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const structuredInstruction = `You are a contract analysis engine. Respond ONLY with a JSON object that conforms to this JSON Schema:
%s

Output JSON only. No markdown.`

// EinoBackend drives any eino chat model. Structured requests carry the JSON
// Schema in a system message and the reply is cleaned before it is returned.
type EinoBackend struct {
	provider  string
	chatModel model.BaseChatModel
}

// NewEinoBackend wraps an eino chat model
func NewEinoBackend(provider string, chatModel model.BaseChatModel) *EinoBackend {
	return &EinoBackend{provider: provider, chatModel: chatModel}
}

// OpenAIConfig configures the OpenAI chat model
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// NewOpenAIBackend creates a backend on the OpenAI chat completions API
func NewOpenAIBackend(ctx context.Context, cfg OpenAIConfig) (*EinoBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	temperature := cfg.Temperature
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI chat model: %w", err)
	}

	return NewEinoBackend(ProviderOpenAI, chatModel), nil
}

// NewOllamaBackend creates a backend on a local Ollama server
func NewOllamaBackend(ctx context.Context, baseURL, modelName string) (*EinoBackend, error) {
	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: baseURL,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama chat model: %w", err)
	}

	return NewEinoBackend(ProviderOllama, chatModel), nil
}

// Generate implements Backend
func (b *EinoBackend) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if req.Structured() {
		messages = append(messages, schema.SystemMessage(fmt.Sprintf(structuredInstruction, req.Schema.JSON)))
	}
	messages = append(messages, schema.UserMessage(req.Prompt))

	resp, err := b.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", &BackendError{Provider: b.provider, Err: err}
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", &BackendError{Provider: b.provider, Err: errors.New("empty response")}
	}

	if req.Structured() {
		return CleanJSON(resp.Content), nil
	}
	return resp.Content, nil
}
