package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/types"
)

var _ Repo = (*PostgresTripRepo)(nil)
var _ Repo = (*MemoryTripRepo)(nil)

// Repo defines the contract for trip persistence.
type Repo interface {
	// SaveTrip stores a trip under its pre-assigned ID.
	SaveTrip(ctx context.Context, trip *types.SavedTrip) error

	// ListTrips returns all saved trips, newest first.
	ListTrips(ctx context.Context) ([]types.SavedTrip, error)

	// GetTrip retrieves one trip by ID.
	// Returns api.ErrNotFound if no trip with that ID exists.
	GetTrip(ctx context.Context, tripID uuid.UUID) (*types.SavedTrip, error)
}

// pgxDB is the subset of pgxpool.Pool the repository uses.
type pgxDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresTripRepo struct {
	logger *slog.Logger
	pgpool pgxDB
}

func NewPostgresTripRepo(pgxpool pgxDB, logger *slog.Logger) *PostgresTripRepo {
	return &PostgresTripRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

func (r *PostgresTripRepo) SaveTrip(ctx context.Context, trip *types.SavedTrip) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "SaveTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.trip.id", trip.ID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SaveTrip"), slog.String("tripID", trip.ID.String()))

	tripData, err := json.Marshal(trip.TripData)
	if err != nil {
		return fmt.Errorf("failed to encode trip data: %w", err)
	}
	itinerary, err := json.Marshal(trip.Itinerary)
	if err != nil {
		return fmt.Errorf("failed to encode itinerary: %w", err)
	}
	costSummary, err := json.Marshal(trip.CostSummary)
	if err != nil {
		return fmt.Errorf("failed to encode cost summary: %w", err)
	}

	_, err = r.pgpool.Exec(ctx, `
        INSERT INTO trips (id, trip_data, itinerary, cost_summary, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		trip.ID, tripData, itinerary, costSummary, trip.CreatedAt)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert trip")
		return fmt.Errorf("failed to save trip: %w", err)
	}

	l.DebugContext(ctx, "Trip saved")
	span.SetStatus(codes.Ok, "Trip saved")
	return nil
}

func (r *PostgresTripRepo) ListTrips(ctx context.Context) ([]types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "ListTrips", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
        SELECT id, trip_data, itinerary, cost_summary, created_at
        FROM trips
        ORDER BY created_at DESC`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query trips")
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []types.SavedTrip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to scan trip row")
			return nil, err
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(trips)))
	span.SetStatus(codes.Ok, "Trips listed")
	return trips, nil
}

func (r *PostgresTripRepo) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.SavedTrip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "GetTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "trips"),
		attribute.String("db.trip.id", tripID.String()),
	))
	defer span.End()

	row := r.pgpool.QueryRow(ctx, `
        SELECT id, trip_data, itinerary, cost_summary, created_at
        FROM trips
        WHERE id = $1`, tripID)

	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Trip not found")
			return nil, fmt.Errorf("trip %s: %w", tripID, api.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch trip")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Trip fetched")
	return trip, nil
}

// scanTrip decodes one trips row. The three document columns are JSONB.
func scanTrip(row pgx.Row) (*types.SavedTrip, error) {
	var trip types.SavedTrip
	var tripData, itinerary, costSummary []byte

	if err := row.Scan(&trip.ID, &tripData, &itinerary, &costSummary, &trip.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan trip row: %w", err)
	}
	if err := json.Unmarshal(tripData, &trip.TripData); err != nil {
		return nil, fmt.Errorf("failed to decode trip data: %w", err)
	}
	if err := json.Unmarshal(itinerary, &trip.Itinerary); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary: %w", err)
	}
	if err := json.Unmarshal(costSummary, &trip.CostSummary); err != nil {
		return nil, fmt.Errorf("failed to decode cost summary: %w", err)
	}
	return &trip, nil
}

// MemoryTripRepo keeps trips in process memory. Used when no database is
// configured; contents are lost on restart.
type MemoryTripRepo struct {
	logger *slog.Logger

	mu    sync.RWMutex
	trips map[uuid.UUID]types.SavedTrip
}

func NewMemoryTripRepo(logger *slog.Logger) *MemoryTripRepo {
	return &MemoryTripRepo{
		logger: logger,
		trips:  make(map[uuid.UUID]types.SavedTrip),
	}
}

func (r *MemoryTripRepo) SaveTrip(_ context.Context, trip *types.SavedTrip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[trip.ID] = *trip
	return nil
}

func (r *MemoryTripRepo) ListTrips(_ context.Context) ([]types.SavedTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.SavedTrip, 0, len(r.trips))
	for _, trip := range r.trips {
		out = append(out, trip)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryTripRepo) GetTrip(_ context.Context, tripID uuid.UUID) (*types.SavedTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trip, ok := r.trips[tripID]
	if !ok {
		return nil, fmt.Errorf("trip %s: %w", tripID, api.ErrNotFound)
	}
	return &trip, nil
}
