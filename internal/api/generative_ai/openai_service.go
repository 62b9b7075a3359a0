package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-budget-planner/app/fetch"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIClient generates completions through an OpenAI-compatible chat
// endpoint.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(model string, logger *slog.Logger, fetcher *fetch.Fetcher) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   model,
		fetcher: fetcher,
		logger:  logger,
	}, nil
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, systemPrompt, userPrompt string, cfg types.GenerationConfig) (string, error) {
	model := c.modelFor(cfg)
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateResponse", trace.WithAttributes(
		attribute.Int("prompt.length", len(userPrompt)),
		attribute.String("model", model),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var out string
	err := c.fetcher.DoFunc(ctx, "openai.generate", func(ctx context.Context) error {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return openaiRetryable(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion returned no choices")
		}
		out = resp.Choices[0].Message.Content
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

func (c *OpenAIClient) modelFor(cfg types.GenerationConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return c.model
}

func openaiRetryable(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fetch.Transient(err)
		}
		return err
	}
	return fetch.Transient(err)
}
