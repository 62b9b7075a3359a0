package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/budget"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/itinerary"
)

// Config contains dependencies needed for the router setup
type Config struct {
	BudgetHandler    *budget.Handler
	ItineraryHandler *itinerary.Handler
	// MetricsHandler serves the prometheus scrape endpoint; nil skips it.
	MetricsHandler http.Handler
	// BudgetTimeout bounds the budget aggregation route. The /budget
	// handler maps the resulting deadline to a 504.
	BudgetTimeout time.Duration
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.BudgetTimeout > 0 {
				r.Use(middleware.Timeout(cfg.BudgetTimeout))
			}
			r.Post("/budget", cfg.BudgetHandler.ComputeBudget)
		})

		r.Route("/itinerary", func(r chi.Router) {
			r.Post("/schedule", cfg.ItineraryHandler.ScheduleActivities)
			r.Post("/suggestions", cfg.ItineraryHandler.SuggestSchedules)
		})
	})

	return r
}
