// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Provider identifies the inference backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
)

// DefaultModel is the model used when DATAGEN_MODEL is unset.
const DefaultModel = "claude-3-opus-20240229"

// ErrMissingAPIKey is returned when the selected provider has no key configured.
var ErrMissingAPIKey = errors.New("API key not configured")

// Config holds all configuration values.
type Config struct {
	// Inference
	Provider         Provider
	Model            string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	OpenAIAPIKey     string
	OllamaHost       string

	// Dataset service
	HubURL   string
	HubToken string

	// Prompt overrides (YAML)
	PromptsFile string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Provider:         Provider(strings.ToLower(getEnv("DATAGEN_PROVIDER", string(ProviderAnthropic)))),
		Model:            getEnv("DATAGEN_MODEL", DefaultModel),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),

		HubURL:   getEnv("DATAGEN_HUB_URL", "https://datasets-server.huggingface.co"),
		HubToken: os.Getenv("HF_TOKEN"),

		PromptsFile: os.Getenv("DATAGEN_PROMPTS_FILE"),

		LogFile:  getEnv("DATAGEN_LOG_FILE", filepath.Join(os.TempDir(), "datagen.log")),
		LogLevel: parseLogLevel(getEnv("DATAGEN_LOG_LEVEL", "INFO")),
	}
}

// Validate fails fast on settings the run cannot work without.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("set ANTHROPIC_API_KEY: %w", ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("set OPENAI_API_KEY: %w", ErrMissingAPIKey)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
