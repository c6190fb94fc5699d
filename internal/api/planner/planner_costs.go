package planner

import "github.com/kbkolda/tripbotic/internal/types"

// Flat flight costs. These are deliberate fixed constants, not
// distance-derived: the estimator stays deterministic given only city names.
const (
	firstLegFlightCost  = 200
	interCityFlightCost = 100
	returnFlightCost    = 0

	// placeholderActivityCost is charged for the synthetic "Local Activity"
	// emitted when no usable POI remains for a day.
	placeholderActivityCost = 30
)

var lodgingCostByTier = map[types.BudgetTier]float64{
	types.BudgetHigh:   150,
	types.BudgetMedium: 100,
	types.BudgetLow:    60,
}

var activityCostByTier = map[types.BudgetTier]float64{
	types.BudgetHigh:   80,
	types.BudgetMedium: 50,
	types.BudgetLow:    20,
}

// dailyFoodRateByTier is applied once per calendar day across the whole trip,
// not per city and not per activity.
var dailyFoodRateByTier = map[types.BudgetTier]float64{
	types.BudgetHigh:   60,
	types.BudgetMedium: 40,
	types.BudgetLow:    20,
}

// costAccumulator holds the four running totals while the allocator walks the
// trip. Totals only ever grow; Summary is taken once at the end of the build.
type costAccumulator struct {
	flights        float64
	accommodations float64
	activities     float64
	food           float64
}

// Summary finalizes the accumulated totals.
func (c *costAccumulator) Summary() types.CostSummary {
	return types.CostSummary{
		Flights:        c.flights,
		Accommodations: c.accommodations,
		Activities:     c.activities,
		Food:           c.food,
		Total:          c.flights + c.accommodations + c.activities + c.food,
	}
}
