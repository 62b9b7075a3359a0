package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/api/tiers"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

// ErrNoActivities marks a scheduling request with an empty candidate pool.
var ErrNoActivities = errors.New("no candidate activities provided")

// ErrInvalidPreferences marks unusable assembly preferences.
var ErrInvalidPreferences = errors.New("invalid schedule preferences")

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary operations.
// Scheduling is pure: no provider calls, no caching, deterministic output
// for the same input.
type Service interface {
	ScheduleActivities(ctx context.Context, activities []types.Activity, prefs types.SchedulePreferences) (*types.Schedule, error)
	SuggestSchedules(ctx context.Context, activities []types.Activity, prefs types.SchedulePreferences) (*types.TieredSchedules, error)
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// ScheduleActivities runs the full pipeline over the caller's candidates:
// tier derivation, scoring, duplicate collapse, then the greedy grid fill.
func (s *ServiceImpl) ScheduleActivities(ctx context.Context, activities []types.Activity, prefs types.SchedulePreferences) (*types.Schedule, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ScheduleActivities", trace.WithAttributes(
		attribute.Int("itinerary.candidates", len(activities)),
		attribute.Int("itinerary.trip_days", prefs.TripDays),
	))
	defer span.End()

	scored, err := s.prepareCandidates(ctx, activities, prefs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	schedule := buildSchedule(scored, prefs)
	s.logger.DebugContext(ctx, "schedule assembled",
		slog.Int("days", len(schedule.Days)),
		slog.Float64("total_cost", schedule.TotalCost))
	span.SetStatus(codes.Ok, "schedule assembled")
	return schedule, nil
}

// SuggestSchedules builds the three tier-layered plans from one candidate
// pool, one suggestion per price tier.
func (s *ServiceImpl) SuggestSchedules(ctx context.Context, activities []types.Activity, prefs types.SchedulePreferences) (*types.TieredSchedules, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "SuggestSchedules", trace.WithAttributes(
		attribute.Int("itinerary.candidates", len(activities)),
		attribute.Int("itinerary.trip_days", prefs.TripDays),
	))
	defer span.End()

	scored, err := s.prepareCandidates(ctx, activities, prefs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	suggestions := buildTieredSchedules(scored, prefs)
	span.SetStatus(codes.Ok, "suggestions assembled")
	return suggestions, nil
}

// prepareCandidates validates the input, derives missing tiers from the
// activity price table, scores every candidate and collapses duplicates.
func (s *ServiceImpl) prepareCandidates(ctx context.Context, activities []types.Activity, prefs types.SchedulePreferences) ([]types.ScoredActivity, error) {
	if len(activities) == 0 {
		return nil, ErrNoActivities
	}
	if prefs.TripDays < 1 {
		return nil, fmt.Errorf("%w: tripDays must be at least 1", ErrInvalidPreferences)
	}

	scored := make([]types.ScoredActivity, 0, len(activities))
	for _, a := range activities {
		if a.Tier == "" {
			a.Tier = tiers.Classify(types.CategoryActivities, a.Price.Amount)
		}
		scored = append(scored, scoreActivity(a, prefs))
	}

	collapsed := collapseNearDuplicates(scored)
	if dropped := len(scored) - len(collapsed); dropped > 0 {
		s.logger.DebugContext(ctx, "collapsed near-duplicate candidates",
			slog.Int("dropped", dropped), slog.Int("kept", len(collapsed)))
	}
	return collapsed, nil
}
