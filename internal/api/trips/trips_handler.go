package trips

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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
	SaveTrip(w http.ResponseWriter, r *http.Request)
	ListTrips(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tripsService Service
	logger       *slog.Logger
}

func NewHandlerImpl(tripsService Service, logger *slog.Logger) *HandlerImpl {
	instanceAddress := fmt.Sprintf("%p", tripsService)
	logger.Info("Creating HandlerImpl",
		slog.String("serviceInstance", instanceAddress))
	return &HandlerImpl{
		tripsService: tripsService,
		logger:       logger,
	}
}

// SaveTrip handles POST /trips.
func (h *HandlerImpl) SaveTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "SaveTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveTrip"))

	var plan types.TripPlan
	if err := api.DecodeJSONBody(w, r, &plan); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripsService.SaveTrip(ctx, &plan)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrValidation) {
			span.SetStatus(codes.Error, "Validation failed")
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to save trip", slog.Any("error", err))
		span.SetStatus(codes.Error, "Failed to save trip")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to save trip")
		return
	}

	span.SetStatus(codes.Ok, "Trip saved")
	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

// ListTrips handles GET /trips.
func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "ListTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListTrips"))

	trips, err := h.tripsService.ListTrips(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list trips")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to list trips")
		return
	}
	if trips == nil {
		trips = []types.SavedTrip{}
	}

	span.SetStatus(codes.Ok, "Trips listed")
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// GetTrip handles GET /trips/{tripID}.
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTrip"))

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid trip ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid trip ID")
		return
	}

	trip, err := h.tripsService.GetTrip(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrNotFound) {
			span.SetStatus(codes.Error, "Trip not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch trip", slog.Any("error", err))
		span.SetStatus(codes.Error, "Failed to fetch trip")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to fetch trip")
		return
	}

	span.SetStatus(codes.Ok, "Trip fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}
