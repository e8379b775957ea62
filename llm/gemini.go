package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	einoschema "github.com/cloudwego/eino/schema"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiBackend calls Gemini through the generative-ai-go client, using
// native JSON mode with a response schema for structured requests
type GeminiBackend struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewGeminiClient creates the Gemini API client
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiBackend wraps an existing client
func NewGeminiBackend(client *genai.Client, model string, temperature float32, logger *zap.Logger) *GeminiBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiBackend{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Generate implements Backend
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	if b.client == nil {
		return "", &BackendError{Provider: ProviderGemini, Err: errors.New("gemini client not set")}
	}

	model := b.client.GenerativeModel(b.model)
	model.SetTemperature(b.temperature)
	if req.Structured() {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = ToGenaiSchema(&einoschema.ParameterInfo{
			Type:      einoschema.Object,
			SubParams: req.Schema.Params,
		})
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &BackendError{Provider: ProviderGemini, Err: err}
	}

	text, err := b.responseText(resp)
	if err != nil {
		return "", &BackendError{Provider: ProviderGemini, Err: err}
	}
	if req.Structured() {
		text = CleanJSON(text)
	}
	return text, nil
}

func (b *GeminiBackend) responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned")
	}

	var out strings.Builder
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			b.logger.Warn("gemini candidate finished early",
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out.WriteString(string(t))
			}
		}
		// Only the first candidate with content is used
		if out.Len() > 0 {
			break
		}
	}

	if out.Len() == 0 {
		return "", errors.New("response has no text")
	}
	return out.String(), nil
}

// ToGenaiSchema converts a schema tree into Gemini's response schema
func ToGenaiSchema(p *einoschema.ParameterInfo) *genai.Schema {
	if p == nil {
		return nil
	}

	s := &genai.Schema{
		Description: p.Desc,
		Enum:        p.Enum,
	}

	switch p.Type {
	case einoschema.Object:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(p.SubParams))
		for name, sub := range p.SubParams {
			s.Properties[name] = ToGenaiSchema(sub)
			if sub.Required {
				s.Required = append(s.Required, name)
			}
		}
		sort.Strings(s.Required)
	case einoschema.Array:
		s.Type = genai.TypeArray
		s.Items = ToGenaiSchema(p.ElemInfo)
	case einoschema.Number:
		s.Type = genai.TypeNumber
	case einoschema.Integer:
		s.Type = genai.TypeInteger
	case einoschema.Boolean:
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}
	if len(p.Enum) > 0 {
		s.Format = "enum"
	}

	return s
}
