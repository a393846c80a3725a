package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter calls the Messages API.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// Compile-time check that AnthropicCompleter implements Completer.
var _ Completer = (*AnthropicCompleter)(nil)

// NewAnthropic creates a Messages API client. Retries are disabled and no
// request timeout is set; a nil httpClient uses http.DefaultClient.
func NewAnthropic(apiKey, baseURL, model string, httpClient *http.Client) *AnthropicCompleter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicCompleter{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Model returns the model identifier sent with every request.
func (c *AnthropicCompleter) Model() string {
	return c.model
}

// Complete sends req as a single user message.
func (c *AnthropicCompleter) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	duration := time.Since(start)
	if err != nil {
		slog.Debug("anthropic request failed", "model", c.model, "duration_ms", duration.Milliseconds(), "error", err)
		return nil, wrapFatalError(fmt.Errorf("anthropic messages: %w", err))
	}

	content := make([]string, 0, len(msg.Content))
	for _, block := range msg.Content {
		content = append(content, block.Text)
	}

	slog.Debug("anthropic request complete", "model", c.model, "blocks", len(content), "duration_ms", duration.Milliseconds())
	return &Completion{
		Content: content,
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}
