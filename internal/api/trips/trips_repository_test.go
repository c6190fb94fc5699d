package trips

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTrip(t *testing.T) *types.SavedTrip {
	t.Helper()
	return &types.SavedTrip{
		ID: uuid.New(),
		TripData: types.TripData{
			Destinations: []string{"Rome", "Florence"},
			Dates:        types.TripDates{Start: "2025-09-01", End: "2025-09-05"},
			Interests:    []string{"Museums"},
			Budget:       types.BudgetMedium,
			RoundTrip:    true,
		},
		Itinerary: []types.DayPlan{{
			Date: "2025-09-01",
			City: "Rome",
			Activities: []types.Activity{
				{Title: "Flight: Home → Rome", Category: "Flight", EstimatedCost: 200},
			},
		}},
		CostSummary: types.CostSummary{Flights: 300, Total: 1250},
		CreatedAt:   time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC),
	}
}

func tripRow(t *testing.T, trip *types.SavedTrip) []any {
	t.Helper()
	tripData, err := json.Marshal(trip.TripData)
	require.NoError(t, err)
	itinerary, err := json.Marshal(trip.Itinerary)
	require.NoError(t, err)
	costSummary, err := json.Marshal(trip.CostSummary)
	require.NoError(t, err)
	return []any{trip.ID, tripData, itinerary, costSummary, trip.CreatedAt}
}

func TestPostgresSaveTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresTripRepo(mock, testLogger())
	trip := sampleTrip(t)

	mock.ExpectExec("INSERT INTO trips").
		WithArgs(trip.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), trip.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.SaveTrip(context.Background(), trip))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveTripDBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresTripRepo(mock, testLogger())
	trip := sampleTrip(t)

	mock.ExpectExec("INSERT INTO trips").
		WithArgs(trip.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), trip.CreatedAt).
		WillReturnError(assert.AnError)

	err = repo.SaveTrip(context.Background(), trip)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save trip")
}

func TestPostgresListTrips(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresTripRepo(mock, testLogger())
	newer := sampleTrip(t)
	older := sampleTrip(t)
	older.CreatedAt = newer.CreatedAt.Add(-24 * time.Hour)

	rows := pgxmock.NewRows([]string{"id", "trip_data", "itinerary", "cost_summary", "created_at"}).
		AddRow(tripRow(t, newer)...).
		AddRow(tripRow(t, older)...)
	mock.ExpectQuery("SELECT id, trip_data, itinerary, cost_summary, created_at").
		WillReturnRows(rows)

	trips, err := repo.ListTrips(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, newer.ID, trips[0].ID)
	assert.Equal(t, older.ID, trips[1].ID)
	assert.Equal(t, newer.TripData, trips[0].TripData)
	assert.Equal(t, newer.Itinerary, trips[0].Itinerary)
	assert.Equal(t, newer.CostSummary, trips[0].CostSummary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresTripRepo(mock, testLogger())
	trip := sampleTrip(t)

	rows := pgxmock.NewRows([]string{"id", "trip_data", "itinerary", "cost_summary", "created_at"}).
		AddRow(tripRow(t, trip)...)
	mock.ExpectQuery("SELECT id, trip_data, itinerary, cost_summary, created_at").
		WithArgs(trip.ID).
		WillReturnRows(rows)

	got, err := repo.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
	assert.Equal(t, trip.Itinerary, got.Itinerary)
}

func TestPostgresGetTripNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresTripRepo(mock, testLogger())
	tripID := uuid.New()

	mock.ExpectQuery("SELECT id, trip_data, itinerary, cost_summary, created_at").
		WithArgs(tripID).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetTrip(context.Background(), tripID)
	require.ErrorIs(t, err, api.ErrNotFound)
	assert.Nil(t, got)
}

func TestMemoryTripRepo(t *testing.T) {
	repo := NewMemoryTripRepo(testLogger())
	ctx := context.Background()

	older := sampleTrip(t)
	newer := sampleTrip(t)
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	require.NoError(t, repo.SaveTrip(ctx, older))
	require.NoError(t, repo.SaveTrip(ctx, newer))

	trips, err := repo.ListTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, newer.ID, trips[0].ID, "newest trip comes first")
	assert.Equal(t, older.ID, trips[1].ID)

	got, err := repo.GetTrip(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	_, err = repo.GetTrip(ctx, uuid.New())
	assert.ErrorIs(t, err, api.ErrNotFound)
}
