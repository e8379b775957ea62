package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL",
		"LLM_PROVIDER", "LLM_TEMPERATURE", "LLM_TIMEOUT", "GEMINI_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "OLLAMA_URL", "OLLAMA_MODEL",
		"STORAGE_TYPE", "STORAGE_LOCAL_PATH", "AWS_S3_BUCKET", "AWS_REGION",
		"MAX_UPLOAD_BYTES", "RETENTION_DAYS", "RETENTION_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.GeminiModel)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 0, cfg.Retention.Days)
	assert.Equal(t, "@daily", cfg.Retention.Schedule)
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("DATABASE_URL", "postgres://localhost/contracts")
	t.Setenv("RETENTION_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAIModel)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 30, cfg.Retention.Days)
	assert.True(t, cfg.HistoryEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"LLM_PROVIDER": "anthropic"}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "ftp"}},
		{"s3 without bucket", map[string]string{"STORAGE_TYPE": "s3"}},
		{"bad upload size", map[string]string{"MAX_UPLOAD_BYTES": "lots"}},
		{"zero upload size", map[string]string{"MAX_UPLOAD_BYTES": "0"}},
		{"negative retention", map[string]string{"RETENTION_DAYS": "-1"}},
		{"bad temperature", map[string]string{"LLM_TEMPERATURE": "hot"}},
		{"bad timeout", map[string]string{"LLM_TIMEOUT": "soon"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
