package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/types"
)

// Ensure implementation satisfies the interface
var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	PlanTrip(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	plannerService Service
	logger         *slog.Logger
}

func NewHandlerImpl(plannerService Service, logger *slog.Logger) *HandlerImpl {
	instanceAddress := fmt.Sprintf("%p", plannerService)
	logger.Info("Creating HandlerImpl",
		slog.String("serviceInstance", instanceAddress))
	return &HandlerImpl{
		plannerService: plannerService,
		logger:         logger,
	}
}

// PlanTrip handles POST /itineraries/plan. Malformed or incomplete requests
// produce 400 responses; a valid request always yields a full plan.
func (h *HandlerImpl) PlanTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "PlanTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/plan"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PlanTrip"))

	var req types.TripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.plannerService.BuildItinerary(ctx, req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrValidation) {
			span.SetStatus(codes.Error, "Validation failed")
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to build itinerary", slog.Any("error", err))
		span.SetStatus(codes.Error, "Itinerary build failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to build itinerary")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary built")
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}
