package generativeAI

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-budget-planner/app/fetch"
)

func newUnitFetcher() *fetch.Fetcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fetch.New(nil, logger, fetch.Config{MaxAttempts: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
}

func TestNewClientSelectsProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := newUnitFetcher()
	ctx := context.Background()

	t.Run("gemini by default", func(t *testing.T) {
		t.Setenv("GOOGLE_GEMINI_API_KEY", "test-key")

		client, err := NewClient(ctx, "", "", logger, fetcher)
		require.NoError(t, err)
		ai, ok := client.(*AIClient)
		require.True(t, ok)
		assert.Equal(t, defaultGeminiModel, ai.model)
	})

	t.Run("openai when configured", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-key")

		client, err := NewClient(ctx, "openai", "gpt-4o", logger, fetcher)
		require.NoError(t, err)
		oc, ok := client.(*OpenAIClient)
		require.True(t, ok)
		assert.Equal(t, "gpt-4o", oc.model)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := NewClient(ctx, "llama-farm", "", logger, fetcher)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported llm provider")
	})

	t.Run("gemini requires api key", func(t *testing.T) {
		t.Setenv("GOOGLE_GEMINI_API_KEY", "")

		_, err := NewClient(ctx, "gemini", "", logger, fetcher)
		require.Error(t, err)
	})
}

func TestGeminiRetryableClassification(t *testing.T) {
	fetcher := newUnitFetcher()
	ctx := context.Background()

	t.Run("rate limit is retried to exhaustion", func(t *testing.T) {
		calls := 0
		err := fetcher.DoFunc(ctx, "gemini.generate", func(context.Context) error {
			calls++
			return geminiRetryable(genai.APIError{Code: 429, Message: "quota exceeded"})
		})

		var exhausted *fetch.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 2, calls)
	})

	t.Run("auth failure is permanent", func(t *testing.T) {
		calls := 0
		err := fetcher.DoFunc(ctx, "gemini.generate", func(context.Context) error {
			calls++
			return geminiRetryable(genai.APIError{Code: 401, Message: "bad key"})
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("transport errors are retried", func(t *testing.T) {
		calls := 0
		err := fetcher.DoFunc(ctx, "gemini.generate", func(context.Context) error {
			calls++
			if calls == 1 {
				return geminiRetryable(errors.New("connection reset"))
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestOpenAIRetryableClassification(t *testing.T) {
	fetcher := newUnitFetcher()
	ctx := context.Background()

	t.Run("server error retried", func(t *testing.T) {
		calls := 0
		err := fetcher.DoFunc(ctx, "openai.generate", func(context.Context) error {
			calls++
			return openaiRetryable(&openai.APIError{HTTPStatusCode: 503, Message: "overloaded"})
		})

		var exhausted *fetch.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 2, calls)
	})

	t.Run("bad request permanent", func(t *testing.T) {
		calls := 0
		err := fetcher.DoFunc(ctx, "openai.generate", func(context.Context) error {
			calls++
			return openaiRetryable(&openai.APIError{HTTPStatusCode: 400, Message: "bad request"})
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
