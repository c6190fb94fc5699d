package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/api/interests"
	"github.com/kbkolda/tripbotic/internal/types"
)

// stubProvider serves canned places per city regardless of category, so
// tests do not depend on which category identifier got pinned.
type stubProvider struct {
	mu           sync.Mutex
	byCity       map[string][]types.Place
	hotelsByCity map[string][]types.Place

	categoryCalls int
	textCalls     int
}

func (s *stubProvider) SearchByCategory(_ context.Context, city, _ string) []types.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryCalls++
	return s.byCity[city]
}

func (s *stubProvider) SearchByText(_ context.Context, city, _ string) []types.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textCalls++
	return s.hotelsByCity[city]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService(t *testing.T, provider *stubProvider, seed int64) *ServiceImpl {
	t.Helper()
	logger := testLogger()
	return NewServiceImplWithSource(provider, interests.NewResolver(logger), logger, rand.NewSource(seed))
}

func rankedPlaces(prefix string, n int) []types.Place {
	out := make([]types.Place, n)
	for i := range out {
		out[i] = types.Place{
			ID:         fmt.Sprintf("%s-%d", prefix, i+1),
			Name:       fmt.Sprintf("%s place %d", prefix, i+1),
			Address:    fmt.Sprintf("%d Main Street", i+1),
			Popularity: (i + 1) * 100,
			Rank:       i + 1,
		}
	}
	return out
}

func hotelPlaces(city string) []types.Place {
	return []types.Place{{
		ID:   city + "-hotel-1",
		Name: "Hotel " + city,
		Categories: []types.PlaceCategory{
			{ID: "4bf58dd8d48988d1fa931735", Name: "Hotel"},
		},
		Rank: 1,
	}}
}

func boolPtr(b bool) *bool { return &b }

func TestExpandDaysInclusive(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	days := expandDays(start, start.AddDate(0, 0, 4))
	require.Len(t, days, 5)
	assert.Equal(t, "2025-09-01", days[0].Format(dateLayout))
	assert.Equal(t, "2025-09-05", days[4].Format(dateLayout))

	assert.Len(t, expandDays(start, start), 1, "start == end is a one-day trip")
}

func TestSplitDaySpans(t *testing.T) {
	tests := []struct {
		name      string
		totalDays int
		destCount int
		want      []int
	}{
		{"even split", 4, 2, []int{2, 2}},
		{"remainder goes to last destination", 5, 2, []int{2, 3}},
		{"remainder of two", 8, 3, []int{2, 2, 4}},
		{"single destination", 5, 1, []int{5}},
		{"more destinations than days", 2, 3, []int{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitDaySpans(tt.totalDays, tt.destCount))
		})
	}
}

func TestBuildWorkingSet(t *testing.T) {
	catalog := interests.NewResolver(testLogger()).Catalog()
	rng := rand.New(rand.NewSource(7))

	t.Run("pads with distinct catalog draws", func(t *testing.T) {
		working := buildWorkingSet([]string{"Museums"}, 4, catalog, rng)
		require.Len(t, working, 4)
		assert.Equal(t, "Museums", working[0], "requested interests come first")
		seen := map[string]struct{}{}
		for _, label := range working {
			_, dup := seen[label]
			assert.False(t, dup, "working set must not contain duplicates")
			seen[label] = struct{}{}
		}
	})

	t.Run("stops when catalog is exhausted", func(t *testing.T) {
		working := buildWorkingSet(nil, len(catalog)+5, catalog, rng)
		assert.Len(t, working, len(catalog))
	})

	t.Run("requested set larger than day count is kept whole", func(t *testing.T) {
		working := buildWorkingSet([]string{"Museums", "Food", "Hiking"}, 2, catalog, rng)
		assert.Equal(t, []string{"Museums", "Food", "Hiking"}, working)
	})
}

func TestPinCategoriesPinsOncePerCityInterest(t *testing.T) {
	svc := testService(t, &stubProvider{}, 11)
	rng := rand.New(rand.NewSource(11))
	pinned := make(map[string]string)

	// Museums and Art resolve to the same canonical interest.
	svc.pinCategories("Rome", []string{"Museums", "Art", "Nature"}, pinned, rng)
	require.Len(t, pinned, 2)
	first := pinned[pinKey("Rome", "Arts & Museums")]
	require.NotEmpty(t, first)

	svc.pinCategories("Rome", []string{"Museums"}, pinned, rng)
	assert.Equal(t, first, pinned[pinKey("Rome", "Arts & Museums")],
		"a pinned category never changes within a build")

	svc.pinCategories("Florence", []string{"Museums"}, pinned, rng)
	assert.NotEmpty(t, pinned[pinKey("Florence", "Arts & Museums")],
		"each city gets its own pin")
}

func TestBuildItineraryValidation(t *testing.T) {
	svc := testService(t, &stubProvider{}, 1)
	dates := &types.TripDates{Start: "2025-09-01", End: "2025-09-05"}

	tests := []struct {
		name string
		req  types.TripRequest
	}{
		{"no destinations", types.TripRequest{Dates: dates, Interests: []string{}, Budget: types.BudgetLow}},
		{"blank destination", types.TripRequest{Destinations: []string{"Rome", "  "}, Dates: dates, Interests: []string{}, Budget: types.BudgetLow}},
		{"missing dates", types.TripRequest{Destinations: []string{"Rome"}, Interests: []string{}, Budget: types.BudgetLow}},
		{"malformed start date", types.TripRequest{Destinations: []string{"Rome"}, Dates: &types.TripDates{Start: "01/09/2025", End: "2025-09-05"}, Interests: []string{}, Budget: types.BudgetLow}},
		{"end before start", types.TripRequest{Destinations: []string{"Rome"}, Dates: &types.TripDates{Start: "2025-09-05", End: "2025-09-01"}, Interests: []string{}, Budget: types.BudgetLow}},
		{"missing interests field", types.TripRequest{Destinations: []string{"Rome"}, Dates: dates, Budget: types.BudgetLow}},
		{"unknown budget tier", types.TripRequest{Destinations: []string{"Rome"}, Dates: dates, Interests: []string{}, Budget: "lavish"}},
		{"empty budget", types.TripRequest{Destinations: []string{"Rome"}, Dates: dates, Interests: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := svc.BuildItinerary(context.Background(), tt.req)
			require.ErrorIs(t, err, api.ErrValidation)
			assert.Nil(t, plan)
		})
	}
}

func TestBuildItineraryEmptyInterestsAccepted(t *testing.T) {
	provider := &stubProvider{
		byCity:       map[string][]types.Place{"Rome": rankedPlaces("rome", 6)},
		hotelsByCity: map[string][]types.Place{"Rome": hotelPlaces("Rome")},
	}
	svc := testService(t, provider, 3)

	plan, err := svc.BuildItinerary(context.Background(), types.TripRequest{
		Destinations: []string{"Rome"},
		Dates:        &types.TripDates{Start: "2025-09-01", End: "2025-09-03"},
		Interests:    []string{},
		Budget:       types.BudgetMedium,
	})
	require.NoError(t, err)
	require.Len(t, plan.Itinerary, 3, "an empty interest list still plans every day")
}

func TestBuildItineraryTwoCityTrip(t *testing.T) {
	provider := &stubProvider{
		byCity: map[string][]types.Place{
			"Rome":     rankedPlaces("rome", 6),
			"Florence": rankedPlaces("florence", 6),
		},
		hotelsByCity: map[string][]types.Place{
			"Rome":     hotelPlaces("Rome"),
			"Florence": hotelPlaces("Florence"),
		},
	}
	svc := testService(t, provider, 42)

	req := types.TripRequest{
		Destinations: []string{"Rome", "Florence"},
		Dates:        &types.TripDates{Start: "2025-09-01", End: "2025-09-05"},
		Interests:    []string{"Museums"},
		Budget:       types.BudgetMedium,
	}
	plan, err := svc.BuildItinerary(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plan.Itinerary, 5)

	wantCities := []string{"Rome", "Rome", "Florence", "Florence", "Florence"}
	wantDates := []string{"2025-09-01", "2025-09-02", "2025-09-03", "2025-09-04", "2025-09-05"}
	for i, day := range plan.Itinerary {
		assert.Equal(t, wantCities[i], day.City)
		assert.Equal(t, wantDates[i], day.Date)
	}

	firstDay := plan.Itinerary[0]
	require.NotEmpty(t, firstDay.Activities)
	assert.Equal(t, "Flight: Home → Rome", firstDay.Activities[0].Title)
	assert.Equal(t, float64(firstLegFlightCost), firstDay.Activities[0].EstimatedCost)

	transferDay := plan.Itinerary[2]
	require.NotEmpty(t, transferDay.Activities)
	assert.Equal(t, "Flight: Rome → Florence", transferDay.Activities[0].Title)
	assert.Equal(t, float64(interCityFlightCost), transferDay.Activities[0].EstimatedCost)

	lastDay := plan.Itinerary[4]
	returnFlight := lastDay.Activities[len(lastDay.Activities)-1]
	assert.Equal(t, "Flight: Florence → Home", returnFlight.Title)
	assert.Equal(t, float64(returnFlightCost), returnFlight.EstimatedCost)

	seenPOIs := map[string]struct{}{}
	for _, day := range plan.Itinerary {
		var lodging, pois int
		for _, a := range day.Activities {
			switch a.Category {
			case "Flight":
			case "Accommodation":
				lodging++
				assert.Equal(t, "Stay at Hotel "+day.City, a.Title)
				assert.Equal(t, float64(100), a.EstimatedCost)
			default:
				pois++
				assert.False(t, a.Fallback, "provider has candidates, no placeholder expected")
				assert.Equal(t, float64(50), a.EstimatedCost)
				require.NotEmpty(t, a.PlaceID)
				_, dup := seenPOIs[a.PlaceID]
				assert.False(t, dup, "POI %s reused across the trip", a.PlaceID)
				seenPOIs[a.PlaceID] = struct{}{}
			}
		}
		assert.Equal(t, 1, lodging, "exactly one lodging entry per day")
		assert.Equal(t, 1, pois, "exactly one POI activity per day")
	}

	assert.Equal(t, float64(300), plan.CostSummary.Flights)
	assert.Equal(t, float64(500), plan.CostSummary.Accommodations)
	assert.Equal(t, float64(250), plan.CostSummary.Activities)
	assert.Equal(t, float64(200), plan.CostSummary.Food)
	assert.Equal(t, float64(1250), plan.CostSummary.Total)

	assert.Equal(t, req.Destinations, plan.TripData.Destinations)
	assert.Equal(t, *req.Dates, plan.TripData.Dates)
	assert.Equal(t, req.Interests, plan.TripData.Interests)
	assert.Equal(t, types.BudgetMedium, plan.TripData.Budget)
	assert.True(t, plan.TripData.RoundTrip, "absent roundTrip defaults to true")

	assert.Equal(t, 2, provider.textCalls, "one lodging search per city, then cached")
}

func TestBuildItineraryPlaceholderWhenProviderEmpty(t *testing.T) {
	provider := &stubProvider{}
	svc := testService(t, provider, 9)

	plan, err := svc.BuildItinerary(context.Background(), types.TripRequest{
		Destinations: []string{"Reykjavik"},
		Dates:        &types.TripDates{Start: "2025-11-03", End: "2025-11-04"},
		Interests:    []string{"Hiking"},
		Budget:       types.BudgetLow,
		RoundTrip:    boolPtr(false),
	})
	require.NoError(t, err, "provider outages must not fail the build")
	require.Len(t, plan.Itinerary, 2)

	for i, day := range plan.Itinerary {
		var placeholder *types.Activity
		for j, a := range day.Activities {
			assert.NotEqual(t, "Accommodation", a.Category, "no lodging entry without a lodging result")
			if a.Fallback {
				placeholder = &day.Activities[j]
			}
		}
		require.NotNil(t, placeholder, "day %d must carry a placeholder activity", i)
		assert.Equal(t, "Local Activity", placeholder.Title)
		assert.Equal(t, float64(placeholderActivityCost), placeholder.EstimatedCost)
		assert.Empty(t, placeholder.PlaceID)
	}

	last := plan.Itinerary[1].Activities
	assert.NotEqual(t, "Flight", last[len(last)-1].Category, "one-way trips have no return flight")

	assert.Equal(t, float64(200), plan.CostSummary.Flights)
	assert.Equal(t, float64(0), plan.CostSummary.Accommodations)
	assert.Equal(t, float64(60), plan.CostSummary.Activities)
	assert.Equal(t, float64(40), plan.CostSummary.Food)
	assert.Equal(t, float64(300), plan.CostSummary.Total)
	assert.False(t, plan.TripData.RoundTrip)
}

func TestBuildItinerarySingleDayRoundTrip(t *testing.T) {
	provider := &stubProvider{
		byCity:       map[string][]types.Place{"Porto": rankedPlaces("porto", 3)},
		hotelsByCity: map[string][]types.Place{"Porto": hotelPlaces("Porto")},
	}
	svc := testService(t, provider, 5)

	plan, err := svc.BuildItinerary(context.Background(), types.TripRequest{
		Destinations: []string{"Porto"},
		Dates:        &types.TripDates{Start: "2025-10-10", End: "2025-10-10"},
		Interests:    []string{"Food"},
		Budget:       types.BudgetHigh,
	})
	require.NoError(t, err)
	require.Len(t, plan.Itinerary, 1)

	activities := plan.Itinerary[0].Activities
	require.GreaterOrEqual(t, len(activities), 3)
	assert.Equal(t, "Flight: Home → Porto", activities[0].Title)
	assert.Equal(t, "Flight: Porto → Home", activities[len(activities)-1].Title)
	assert.Equal(t, float64(200), plan.CostSummary.Flights)
}

func TestBuildItineraryDeterministicWithSeed(t *testing.T) {
	build := func() *types.TripPlan {
		provider := &stubProvider{
			byCity: map[string][]types.Place{
				"Rome":     rankedPlaces("rome", 6),
				"Florence": rankedPlaces("florence", 6),
			},
			hotelsByCity: map[string][]types.Place{
				"Rome":     hotelPlaces("Rome"),
				"Florence": hotelPlaces("Florence"),
			},
		}
		svc := testService(t, provider, 1234)
		plan, err := svc.BuildItinerary(context.Background(), types.TripRequest{
			Destinations: []string{"Rome", "Florence"},
			Dates:        &types.TripDates{Start: "2025-09-01", End: "2025-09-07"},
			Interests:    []string{"Museums", "Food"},
			Budget:       types.BudgetMedium,
		})
		require.NoError(t, err)
		return plan
	}

	assert.Equal(t, build(), build(), "same seed and inputs must reproduce the plan exactly")
}
