package budget

import (
	"context"
	"errors"
	"fmt"
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
	budgetService Service
	validate      *validator.Validate
	logger        *slog.Logger
}

func NewHandler(budgetService Service, logger *slog.Logger) *Handler {
	return &Handler{
		budgetService: budgetService,
		validate:      validator.New(),
		logger:        logger,
	}
}

// ComputeBudget handles the composite budget endpoint. Invalid input maps
// to 400, an exceeded deadline to 504; everything else the service absorbs
// into degraded buckets.
func (h *Handler) ComputeBudget(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("BudgetHandler").Start(r.Context(), "ComputeBudget", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/budget"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ComputeBudget"))
	l.DebugContext(ctx, "Compute budget handler invoked")

	var req types.BudgetRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		l.WarnContext(ctx, "Request failed validation", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.ReturnDate != "" && req.ReturnDate < req.DepartureDate {
		l.WarnContext(ctx, "Return date precedes departure date")
		api.ErrorResponse(w, r, http.StatusBadRequest, "returnDate must not precede departureDate")
		return
	}

	resp, err := h.budgetService.ComputeBudget(ctx, req)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrUnknownDestination):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAggregationTimeout), errors.Is(err, context.DeadlineExceeded):
			l.ErrorContext(ctx, "Budget computation timed out", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusGatewayTimeout, "budget computation timed out")
		default:
			l.ErrorContext(ctx, "Budget computation failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to compute budget")
		}
		return
	}

	span.SetStatus(codes.Ok, "budget computed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %q failed validation on the %q rule", fe.Field(), fe.Tag())
	}
	return "invalid request"
}
