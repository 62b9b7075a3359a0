// Package generativeAI holds the LLM chat-completion adapters. The
// estimation services talk to a single Client interface; the concrete
// backend (Gemini or an OpenAI-compatible endpoint) is picked by
// configuration at startup. Responses are returned as raw text on
// purpose: the model is instructed to emit JSON but never trusted to.
package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-budget-planner/app/fetch"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Client is the chat-completion surface consumed by the budget and
// itinerary services.
type Client interface {
	GenerateResponse(ctx context.Context, systemPrompt, userPrompt string, cfg types.GenerationConfig) (string, error)
}

// NewClient builds the adapter named by provider. An empty provider
// selects Gemini.
func NewClient(ctx context.Context, provider, model string, logger *slog.Logger, fetcher *fetch.Fetcher) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "gemini":
		return NewAIClient(ctx, model, logger, fetcher)
	case "openai":
		return NewOpenAIClient(model, logger, fetcher)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}

// AIClient generates completions through the Gemini API.
type AIClient struct {
	client  *genai.Client
	model   string
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

var _ Client = (*AIClient)(nil)

func NewAIClient(ctx context.Context, model string, logger *slog.Logger, fetcher *fetch.Fetcher) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		err := fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, err
	}

	if model == "" {
		model = defaultGeminiModel
	}
	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client:  client,
		model:   model,
		fetcher: fetcher,
		logger:  logger,
	}, nil
}

// GenerateResponse sends one system+user prompt pair and returns the raw
// response text. Rate-limit and server errors are retried through the
// shared fetcher policy.
func (ai *AIClient) GenerateResponse(ctx context.Context, systemPrompt, userPrompt string, cfg types.GenerationConfig) (string, error) {
	model := ai.modelFor(cfg)
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateResponse", trace.WithAttributes(
		attribute.Int("prompt.length", len(userPrompt)),
		attribute.String("model", model),
	))
	defer span.End()

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](cfg.Temperature),
	}
	if cfg.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(cfg.MaxTokens)
	}
	if systemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}

	var out string
	err := ai.fetcher.DoFunc(ctx, "gemini.generate", func(ctx context.Context) error {
		chat, err := ai.client.Chats.Create(ctx, model, genCfg, nil)
		if err != nil {
			return geminiRetryable(fmt.Errorf("failed to create chat: %w", err))
		}
		resp, err := chat.SendMessage(ctx, genai.Part{Text: userPrompt})
		if err != nil {
			return geminiRetryable(err)
		}
		out = resp.Text()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate response")
		return "", err
	}

	span.SetAttributes(attribute.Int("response.length", len(out)))
	span.SetStatus(codes.Ok, "Response generated successfully")
	return out, nil
}

func (ai *AIClient) modelFor(cfg types.GenerationConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return ai.model
}

// geminiRetryable marks rate-limit and server-side failures as transient
// for the fetcher. Anything with a definite client-error status (bad
// request, auth) is permanent; transport-level errors are retried.
func geminiRetryable(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return fetch.Transient(err)
		}
		return err
	}
	return fetch.Transient(err)
}
