package llm

import (
	"context"
	"fmt"

	"contract-analyzer-backend/config"

	"go.uber.org/zap"
)

// NewBackend builds the backend selected by configuration
func NewBackend(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Backend, error) {
	switch cfg.Provider {
	case ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		logger.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))
		return NewGeminiBackend(client, cfg.GeminiModel, cfg.Temperature, logger), nil

	case ProviderOpenAI:
		backend, err := NewOpenAIBackend(ctx, OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIURL,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("OpenAI chat model initialized", zap.String("model", cfg.OpenAIModel))
		return backend, nil

	case ProviderOllama:
		backend, err := NewOllamaBackend(ctx, cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		logger.Info("Ollama chat model initialized",
			zap.String("url", cfg.OllamaURL),
			zap.String("model", cfg.OllamaModel),
		)
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
