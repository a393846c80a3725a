package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newMessagesServer(t *testing.T, status int, body string, seen *capturedRequest, apiKey *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		if apiKey != nil {
			*apiKey = r.Header.Get("x-api-key")
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicCompleteSendsParameters(t *testing.T) {
	var seen capturedRequest
	var key string
	srv := newMessagesServer(t, http.StatusOK,
		`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"  ok \n"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":1}}`,
		&seen, &key)

	c := NewAnthropic("test-key", srv.URL, "claude-test", srv.Client())
	got, err := c.Complete(context.Background(), RatingRequest("rate me"))
	require.NoError(t, err)

	text, ok := got.First()
	require.True(t, ok)
	assert.Equal(t, "  ok \n", text, "completer returns raw text; trimming happens in the service")
	assert.Equal(t, Usage{InputTokens: 3, OutputTokens: 1}, got.Usage)

	assert.Equal(t, "test-key", key)
	assert.Equal(t, "claude-test", seen.Model)
	assert.Equal(t, 1, seen.MaxTokens)
	require.NotNil(t, seen.Temperature, "zero temperature must still be sent")
	assert.Equal(t, 0.0, *seen.Temperature)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
	require.Len(t, seen.Messages[0].Content, 1)
	assert.Equal(t, "rate me", seen.Messages[0].Content[0].Text)
}

func TestAnthropicCompleteGenerationParameters(t *testing.T) {
	var seen capturedRequest
	srv := newMessagesServer(t, http.StatusOK,
		`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"x"}]}`, &seen, nil)

	c := NewAnthropic("k", srv.URL, "m", srv.Client())
	_, err := c.Complete(context.Background(), GenerationRequest("hello"))
	require.NoError(t, err)

	assert.Equal(t, 500, seen.MaxTokens)
	require.NotNil(t, seen.Temperature)
	assert.InDelta(t, 0.7, *seen.Temperature, 1e-9)
}

func TestAnthropicCompleteMissingContent(t *testing.T) {
	srv := newMessagesServer(t, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant"}`, nil, nil)

	c := NewAnthropic("k", srv.URL, "m", srv.Client())
	got, err := c.Complete(context.Background(), GenerationRequest("hello"))
	require.NoError(t, err)

	_, ok := got.First()
	assert.False(t, ok)
}

func TestAnthropicCompleteErrorStatus(t *testing.T) {
	t.Run("server error is not fatal", func(t *testing.T) {
		srv := newMessagesServer(t, http.StatusInternalServerError,
			`{"type":"error","error":{"type":"api_error","message":"boom"}}`, nil, nil)

		c := NewAnthropic("k", srv.URL, "m", srv.Client())
		_, err := c.Complete(context.Background(), GenerationRequest("hello"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrFatalAPI))
	})

	t.Run("unauthorized is fatal", func(t *testing.T) {
		srv := newMessagesServer(t, http.StatusUnauthorized,
			`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil, nil)

		c := NewAnthropic("bad", srv.URL, "m", srv.Client())
		_, err := c.Complete(context.Background(), GenerationRequest("hello"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFatalAPI))
	})
}
