package types

import (
	"time"

	"github.com/google/uuid"
)

// BudgetTier is the coarse spending level a trip is planned against.
type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// Valid reports whether the tier is one of the three supported levels.
func (b BudgetTier) Valid() bool {
	return b == BudgetLow || b == BudgetMedium || b == BudgetHigh
}

// TripDates is an inclusive calendar range in ISO (YYYY-MM-DD) form.
type TripDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TripRequest is the immutable input to an itinerary build.
// Interests must be present in the payload but may be empty; RoundTrip
// defaults to true when omitted.
type TripRequest struct {
	Destinations []string   `json:"destinations"`
	Dates        *TripDates `json:"dates"`
	Interests    []string   `json:"interests"`
	Budget       BudgetTier `json:"budget"`
	RoundTrip    *bool      `json:"roundTrip,omitempty"`
}

// IsRoundTrip resolves the optional flag with its default.
func (r TripRequest) IsRoundTrip() bool {
	return r.RoundTrip == nil || *r.RoundTrip
}

// Activity is one entry of a day plan: a flight leg, a lodging stay, a POI
// visit, or a synthetic placeholder when no POI could be found.
type Activity struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	EstimatedCost float64 `json:"estimated_cost"`
	Website       string  `json:"website,omitempty"`
	PlaceID       string  `json:"fsq_id,omitempty"`
	Rank          int     `json:"rank,omitempty"`
	Fallback      bool    `json:"fallback,omitempty"`
}

// DayPlan is one calendar day of the itinerary. Activity order is fixed:
// flight leg (if any), lodging, the day's POI, trailing return flight on the
// final day of a round trip.
type DayPlan struct {
	Date       string     `json:"date"`
	City       string     `json:"city"`
	Activities []Activity `json:"activities"`
}

// CostSummary holds the four running totals accumulated during a build.
// It is finalized once at the end of the build and never recomputed from the
// day plans afterwards.
type CostSummary struct {
	Flights        float64 `json:"flights"`
	Accommodations float64 `json:"accommodations"`
	Activities     float64 `json:"activities"`
	Food           float64 `json:"food"`
	Total          float64 `json:"total"`
}

// TripData echoes the validated request back to the caller alongside the
// generated itinerary.
type TripData struct {
	Destinations []string   `json:"destinations"`
	Dates        TripDates  `json:"dates"`
	Interests    []string   `json:"interests"`
	Budget       BudgetTier `json:"budget"`
	RoundTrip    bool       `json:"roundTrip"`
}

// TripPlan is the artifact returned by the planner: the full day-ordered
// itinerary plus the cost breakdown.
type TripPlan struct {
	TripData    TripData    `json:"trip_data"`
	Itinerary   []DayPlan   `json:"itinerary"`
	CostSummary CostSummary `json:"cost_summary"`
}

// SavedTrip is a persisted trip plan.
type SavedTrip struct {
	ID          uuid.UUID   `json:"id"`
	TripData    TripData    `json:"trip_data"`
	Itinerary   []DayPlan   `json:"itinerary"`
	CostSummary CostSummary `json:"cost_summary"`
	CreatedAt   time.Time   `json:"created_at"`
}
