// Package llm sends single-message completions to an inference provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/raphaelgruber/datagen/internal/config"
)

// ErrFatalAPI marks provider errors that will fail every request the same way
// (credentials, billing, quota).
var ErrFatalAPI = errors.New("fatal API error")

// Request is one user message plus sampling parameters.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completion holds the text of each content block returned, in order.
type Completion struct {
	Content []string
	Usage   Usage
}

// Usage is the token accounting reported by the provider, zero when absent.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// First returns the first content block's text, and false when no content came back.
func (c *Completion) First() (string, bool) {
	if c == nil || len(c.Content) == 0 {
		return "", false
	}
	return c.Content[0], true
}

// Completer issues one completion request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	Model() string
}

// GenerationRequest builds the request used to produce a training example.
func GenerationRequest(prompt string) Request {
	return Request{Prompt: prompt, MaxTokens: 500, Temperature: 0.7}
}

// RatingRequest builds the request used to score a unit.
func RatingRequest(prompt string) Request {
	return Request{Prompt: prompt, MaxTokens: 1, Temperature: 0.0}
}

// New creates a Completer for the configured provider.
func New(cfg config.Config) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic: %w", config.ErrMissingAPIKey)
		}
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.Model, nil), nil
	case config.ProviderOpenAI, config.ProviderOllama:
		return NewLangchain(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

var fatalStatus = regexp.MustCompile(`\b40[13]\b`)

// isFatalAPIError reports whether err looks like a credential or billing failure.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"credit balance", "rate limit", "quota", "billing",
		"invalid api key", "invalid x-api-key", "authentication", "unauthorized",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return fatalStatus.MatchString(msg)
}

// wrapFatalError tags fatal errors with ErrFatalAPI and returns others unchanged.
func wrapFatalError(err error) error {
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %w", ErrFatalAPI, err)
	}
	return err
}
