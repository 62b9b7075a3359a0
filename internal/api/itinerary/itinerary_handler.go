package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/api"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

type Handler struct {
	itineraryService Service
	validate         *validator.Validate
	logger           *slog.Logger
}

func NewHandler(itineraryService Service, logger *slog.Logger) *Handler {
	return &Handler{
		itineraryService: itineraryService,
		validate:         validator.New(),
		logger:           logger,
	}
}

// ScheduleActivities handles the day-by-day schedule endpoint.
func (h *Handler) ScheduleActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ScheduleActivities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itinerary/schedule"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ScheduleActivities"))
	l.DebugContext(ctx, "Schedule activities handler invoked")

	req, ok := h.decodeScheduleRequest(ctx, w, r, span)
	if !ok {
		return
	}

	schedule, err := h.itineraryService.ScheduleActivities(ctx, req.Activities, req.Preferences)
	if err != nil {
		h.writeServiceError(ctx, w, r, span, err)
		return
	}

	span.SetStatus(codes.Ok, "schedule assembled")
	api.WriteJSONResponse(w, r, http.StatusOK, schedule)
}

// SuggestSchedules handles the three-tier suggestion endpoint.
func (h *Handler) SuggestSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "SuggestSchedules", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itinerary/suggestions"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SuggestSchedules"))
	l.DebugContext(ctx, "Suggest schedules handler invoked")

	req, ok := h.decodeScheduleRequest(ctx, w, r, span)
	if !ok {
		return
	}

	suggestions, err := h.itineraryService.SuggestSchedules(ctx, req.Activities, req.Preferences)
	if err != nil {
		h.writeServiceError(ctx, w, r, span, err)
		return
	}

	span.SetStatus(codes.Ok, "suggestions assembled")
	api.WriteJSONResponse(w, r, http.StatusOK, suggestions)
}

func (h *Handler) decodeScheduleRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span) (types.ScheduleRequest, bool) {
	var req types.ScheduleRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.logger.WarnContext(ctx, "Request failed validation", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid schedule request")
		return req, false
	}
	return req, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	switch {
	case errors.Is(err, ErrNoActivities), errors.Is(err, ErrInvalidPreferences):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(ctx, "Schedule assembly failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to assemble schedule")
	}
}
