package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/types"
)

type stubPlannerService struct {
	plan *types.TripPlan
	err  error
}

func (s *stubPlannerService) BuildItinerary(context.Context, types.TripRequest) (*types.TripPlan, error) {
	return s.plan, s.err
}

func planRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/itineraries/plan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPlanTripSuccess(t *testing.T) {
	plan := &types.TripPlan{
		TripData: types.TripData{
			Destinations: []string{"Rome"},
			Dates:        types.TripDates{Start: "2025-09-01", End: "2025-09-02"},
			Interests:    []string{"Museums"},
			Budget:       types.BudgetMedium,
			RoundTrip:    true,
		},
		CostSummary: types.CostSummary{Flights: 200, Total: 200},
	}
	h := NewHandlerImpl(&stubPlannerService{plan: plan}, testLogger())

	rr := httptest.NewRecorder()
	h.PlanTrip(rr, planRequest(t, `{"destinations":["Rome"],"dates":{"start":"2025-09-01","end":"2025-09-02"},"interests":["Museums"],"budget":"medium"}`))

	require.Equal(t, http.StatusOK, rr.Code)
	var got types.TripPlan
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, *plan, got)
}

func TestPlanTripValidationError(t *testing.T) {
	svc := &stubPlannerService{err: fmt.Errorf("%w: destinations are required", api.ErrValidation)}
	h := NewHandlerImpl(svc, testLogger())

	rr := httptest.NewRecorder()
	h.PlanTrip(rr, planRequest(t, `{"interests":[]}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "destinations are required")
}

func TestPlanTripMalformedBody(t *testing.T) {
	h := NewHandlerImpl(&stubPlannerService{}, testLogger())

	rr := httptest.NewRecorder()
	h.PlanTrip(rr, planRequest(t, `{"destinations": [`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
