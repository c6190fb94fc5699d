package trips

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/types"
)

type stubRepo struct {
	saved   []*types.SavedTrip
	saveErr error
}

func (s *stubRepo) SaveTrip(_ context.Context, trip *types.SavedTrip) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, trip)
	return nil
}

func (s *stubRepo) ListTrips(context.Context) ([]types.SavedTrip, error) {
	out := make([]types.SavedTrip, 0, len(s.saved))
	for _, trip := range s.saved {
		out = append(out, *trip)
	}
	return out, nil
}

func (s *stubRepo) GetTrip(_ context.Context, tripID uuid.UUID) (*types.SavedTrip, error) {
	for _, trip := range s.saved {
		if trip.ID == tripID {
			return trip, nil
		}
	}
	return nil, api.ErrNotFound
}

func samplePlan() *types.TripPlan {
	return &types.TripPlan{
		TripData: types.TripData{
			Destinations: []string{"Rome"},
			Dates:        types.TripDates{Start: "2025-09-01", End: "2025-09-02"},
			Interests:    []string{"Museums"},
			Budget:       types.BudgetMedium,
			RoundTrip:    true,
		},
		Itinerary: []types.DayPlan{
			{Date: "2025-09-01", City: "Rome"},
			{Date: "2025-09-02", City: "Rome"},
		},
		CostSummary: types.CostSummary{Flights: 200, Total: 200},
	}
}

func TestSaveTripAssignsIdentity(t *testing.T) {
	repo := &stubRepo{}
	svc := NewServiceImpl(repo, testLogger())

	trip, err := svc.SaveTrip(context.Background(), samplePlan())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, trip.ID)
	assert.False(t, trip.CreatedAt.IsZero())
	assert.Equal(t, samplePlan().TripData, trip.TripData)
	assert.Equal(t, samplePlan().Itinerary, trip.Itinerary)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, trip, repo.saved[0])

	second, err := svc.SaveTrip(context.Background(), samplePlan())
	require.NoError(t, err)
	assert.NotEqual(t, trip.ID, second.ID, "every save gets its own identity")
}

func TestSaveTripRejectsEmptyPlan(t *testing.T) {
	svc := NewServiceImpl(&stubRepo{}, testLogger())

	tests := []struct {
		name string
		plan *types.TripPlan
	}{
		{"nil plan", nil},
		{"no itinerary days", &types.TripPlan{TripData: types.TripData{Destinations: []string{"Rome"}}}},
		{"no destinations", &types.TripPlan{Itinerary: []types.DayPlan{{Date: "2025-09-01"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip, err := svc.SaveTrip(context.Background(), tt.plan)
			require.ErrorIs(t, err, api.ErrValidation)
			assert.Nil(t, trip)
		})
	}
}

func TestSaveTripPropagatesRepoError(t *testing.T) {
	svc := NewServiceImpl(&stubRepo{saveErr: assert.AnError}, testLogger())

	trip, err := svc.SaveTrip(context.Background(), samplePlan())
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, trip)
}

func TestListAndGetTrips(t *testing.T) {
	repo := &stubRepo{}
	svc := NewServiceImpl(repo, testLogger())

	saved, err := svc.SaveTrip(context.Background(), samplePlan())
	require.NoError(t, err)

	trips, err := svc.ListTrips(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 1)

	got, err := svc.GetTrip(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	_, err = svc.GetTrip(context.Background(), uuid.New())
	assert.ErrorIs(t, err, api.ErrNotFound)
}
