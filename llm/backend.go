// Package llm isolates the external reasoning backend behind a single
// capability: given a prompt and an optional schema, return text.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Provider names accepted in configuration
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Schema describes the structured output a request demands
type Schema struct {
	Name   string
	Params map[string]*schema.ParameterInfo
	// JSON is the same shape rendered as JSON Schema text
	JSON string
}

// Request is one call to the backend. A nil Schema asks for free text.
type Request struct {
	Prompt string
	Schema *Schema
}

// Structured reports whether the request asks for schema-constrained output
func (r Request) Structured() bool {
	return r.Schema != nil
}

// Backend is the reasoning backend capability. In structured mode the
// returned string is the JSON document produced by the model; callers must
// validate it before trusting it.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// BackendError wraps any failure of the backend call itself
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object in a model reply
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
