package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/go-travel-budget-planner/app/fetch"
	"github.com/FACorreiaa/go-travel-budget-planner/config"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/amadeus"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/budget"
	generativeAI "github.com/FACorreiaa/go-travel-budget-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Inventory        *amadeus.Client
	LLM              generativeAI.Client
	BudgetHandler    *budget.Handler
	ItineraryHandler *itinerary.Handler
}

// NewContainer initializes and returns a new dependency container. Each
// outbound provider gets its own fetcher so rate limits never interfere
// across providers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	amadeusFetcher := fetch.New(nil, logger, fetch.Config{
		MinInterval: cfg.Providers.Amadeus.MinInterval,
		MaxAttempts: cfg.Providers.Amadeus.Retry.MaxAttempts,
		BaseBackoff: cfg.Providers.Amadeus.Retry.BaseBackoff,
		MaxBackoff:  cfg.Providers.Amadeus.Retry.MaxBackoff,
	})
	inventory := amadeus.NewClient(amadeus.ConfigFromEnv(), amadeusFetcher, logger)
	if !inventory.Available() {
		logger.Warn("Amadeus credentials not set; all categories will use LLM estimates")
	}

	llmFetcher := fetch.New(nil, logger, fetch.Config{
		MinInterval: cfg.Providers.LLM.MinInterval,
		MaxAttempts: cfg.Providers.LLM.Retry.MaxAttempts,
		BaseBackoff: cfg.Providers.LLM.Retry.BaseBackoff,
		MaxBackoff:  cfg.Providers.LLM.Retry.MaxBackoff,
	})
	llmClient, err := generativeAI.NewClient(ctx, cfg.LLM.Provider, cfg.LLM.Model, logger, llmFetcher)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}

	genCfg := types.GenerationConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}

	budgetService := budget.NewServiceImpl(llmClient, inventory, genCfg,
		cfg.Budget.CacheTTL, cfg.Budget.SoftDeadline, logger)
	budgetHandler := budget.NewHandler(budgetService, logger)

	itineraryService := itinerary.NewServiceImpl(logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Inventory:        inventory,
		LLM:              llmClient,
		BudgetHandler:    budgetHandler,
		ItineraryHandler: itineraryHandler,
	}, nil
}
