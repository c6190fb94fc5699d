package trips

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for saved trips.
type Service interface {
	SaveTrip(ctx context.Context, plan *types.TripPlan) (*types.SavedTrip, error)
	ListTrips(ctx context.Context) ([]types.SavedTrip, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (*types.SavedTrip, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger *slog.Logger
	repo   Repo
}

func NewServiceImpl(repo Repo, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// SaveTrip assigns the plan an identity and persists it.
func (s *ServiceImpl) SaveTrip(ctx context.Context, plan *types.TripPlan) (*types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "SaveTrip")
	defer span.End()

	l := s.logger.With(slog.String("method", "SaveTrip"))

	if plan == nil || len(plan.Itinerary) == 0 {
		err := fmt.Errorf("%w: a trip plan with at least one day is required", api.ErrValidation)
		span.SetStatus(codes.Error, "Empty trip plan")
		return nil, err
	}
	if len(plan.TripData.Destinations) == 0 {
		err := fmt.Errorf("%w: trip data is missing destinations", api.ErrValidation)
		span.SetStatus(codes.Error, "Missing destinations")
		return nil, err
	}

	trip := &types.SavedTrip{
		ID:          uuid.New(),
		TripData:    plan.TripData,
		Itinerary:   plan.Itinerary,
		CostSummary: plan.CostSummary,
		CreatedAt:   time.Now().UTC(),
	}
	span.SetAttributes(attribute.String("trip.id", trip.ID.String()))

	if err := s.repo.SaveTrip(ctx, trip); err != nil {
		l.ErrorContext(ctx, "Failed to save trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save trip")
		return nil, err
	}

	l.InfoContext(ctx, "Trip saved", slog.String("tripID", trip.ID.String()))
	span.SetStatus(codes.Ok, "Trip saved")
	return trip, nil
}

func (s *ServiceImpl) ListTrips(ctx context.Context) ([]types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "ListTrips")
	defer span.End()

	trips, err := s.repo.ListTrips(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list trips")
		return nil, err
	}

	span.SetAttributes(attribute.Int("trips.count", len(trips)))
	span.SetStatus(codes.Ok, "Trips listed")
	return trips, nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "GetTrip")
	defer span.End()

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch trip")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Trip fetched")
	return trip, nil
}
