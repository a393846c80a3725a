package llm

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/datagen/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainCompleter wraps a langchaingo model for the openai and ollama providers.
type LangchainCompleter struct {
	llm       llms.Model
	modelName string
}

// Compile-time check that LangchainCompleter implements Completer.
var _ Completer = (*LangchainCompleter)(nil)

// NewLangchain creates a langchaingo-backed completer from configuration.
func NewLangchain(cfg config.Config) (*LangchainCompleter, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai: %w", config.ErrMissingAPIKey)
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported langchain provider: %s", cfg.Provider)
	}

	return &LangchainCompleter{llm: model, modelName: cfg.Model}, nil
}

// Model returns the LLM model name.
func (c *LangchainCompleter) Model() string {
	return c.modelName
}

// Complete sends req as a single human message.
func (c *LangchainCompleter) Complete(ctx context.Context, req Request) (*Completion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	response, err := c.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(req.Temperature),
	)
	if err != nil {
		return nil, wrapFatalError(fmt.Errorf("generate content: %w", err))
	}

	completion := &Completion{Content: make([]string, 0, len(response.Choices))}
	for _, choice := range response.Choices {
		completion.Content = append(completion.Content, choice.Content)
	}
	if len(response.Choices) > 0 {
		info := response.Choices[0].GenerationInfo
		completion.Usage = Usage{
			InputTokens:  tokenCount(info, "PromptTokens"),
			OutputTokens: tokenCount(info, "CompletionTokens"),
		}
	}
	return completion, nil
}

// tokenCount reads a token count from langchaingo generation info.
func tokenCount(info map[string]any, key string) int64 {
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
