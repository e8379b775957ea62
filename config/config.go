// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup
type Config struct {
	Port      string `validate:"required,numeric"`
	GinMode   string `validate:"omitempty,oneof=debug release test"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	// DatabaseURL is optional; without it analysis history is disabled
	DatabaseURL string

	LLM       LLMConfig
	Storage   StorageConfig
	Retention RetentionConfig

	MaxUploadBytes int64 `validate:"gt=0"`
}

// LLMConfig selects and configures the reasoning backend
type LLMConfig struct {
	Provider     string  `validate:"oneof=gemini openai ollama"`
	Temperature  float32 `validate:"gte=0,lte=2"`
	Timeout      time.Duration
	GeminiAPIKey string
	GeminiModel  string `validate:"required_if=Provider gemini"`
	OpenAIAPIKey string
	OpenAIModel  string `validate:"required_if=Provider openai"`
	OpenAIURL    string `validate:"omitempty,url"`
	OllamaURL    string `validate:"required_if=Provider ollama"`
	OllamaModel  string `validate:"required_if=Provider ollama"`
}

// StorageConfig holds configuration for the document archive
type StorageConfig struct {
	Type         string `validate:"oneof=local s3"`
	LocalPath    string `validate:"required_if=Type local"`
	S3Bucket     string `validate:"required_if=Type s3"`
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// RetentionConfig controls the scheduled purge of old analyses
type RetentionConfig struct {
	Days     int    `validate:"gte=0"`
	Schedule string `validate:"required"`
}

// LoadDotEnv loads a .env file from the working directory or the project
// root relative to cmd/<name>/
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     os.Getenv("GIN_MODE"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LLM: LLMConfig{
			Provider:     getEnv("LLM_PROVIDER", "gemini"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
			OpenAIURL:    os.Getenv("OPENAI_BASE_URL"),
			OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:  getEnv("OLLAMA_MODEL", "qwen2.5"),
		},
		Storage: StorageConfig{
			Type:         getEnv("STORAGE_TYPE", "local"),
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "./storage/files"),
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		Retention: RetentionConfig{
			Schedule: getEnv("RETENTION_SCHEDULE", "@daily"),
		},
	}

	temperature, err := getFloat("LLM_TEMPERATURE", 0.2)
	if err != nil {
		return nil, err
	}
	cfg.LLM.Temperature = float32(temperature)

	if cfg.LLM.Timeout, err = getDuration("LLM_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = getInt64("MAX_UPLOAD_BYTES", 10*1024*1024); err != nil {
		return nil, err
	}
	days, err := getInt64("RETENTION_DAYS", 0)
	if err != nil {
		return nil, err
	}
	cfg.Retention.Days = int(days)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration's struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// HistoryEnabled reports whether analyses are persisted
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
