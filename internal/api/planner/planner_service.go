package planner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbkolda/tripbotic/app/observability/metrics"
	"github.com/kbkolda/tripbotic/internal/api"
	"github.com/kbkolda/tripbotic/internal/api/interests"
	"github.com/kbkolda/tripbotic/internal/api/places"
	"github.com/kbkolda/tripbotic/internal/types"
)

const dateLayout = "2006-01-02"

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary generation.
type Service interface {
	BuildItinerary(ctx context.Context, req types.TripRequest) (*types.TripPlan, error)
}

// ServiceImpl provides the implementation for Service. All build state —
// selection cache, dedup tracker, pinned categories, random stream — is
// created inside BuildItinerary, so one instance safely serves concurrent
// requests.
type ServiceImpl struct {
	logger   *slog.Logger
	provider places.Provider
	resolver *interests.Resolver
	newRand  func() *rand.Rand
}

// NewServiceImpl creates a planner service with a time-seeded random source.
func NewServiceImpl(provider places.Provider, resolver *interests.Resolver, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
		resolver: resolver,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// NewServiceImplWithSource creates a planner service drawing from the given
// random source, so tests can assert exact selections.
func NewServiceImplWithSource(provider places.Provider, resolver *interests.Resolver, logger *slog.Logger, src rand.Source) *ServiceImpl {
	s := NewServiceImpl(provider, resolver, logger)
	s.newRand = func() *rand.Rand { return rand.New(src) }
	return s
}

// BuildItinerary produces a complete day-by-day plan for a validated trip
// request. Once validation passes it cannot fail: provider outages and
// exhausted candidate pools degrade to placeholder activities, and the caller
// always receives a plan covering every requested day.
func (s *ServiceImpl) BuildItinerary(ctx context.Context, req types.TripRequest) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "BuildItinerary", trace.WithAttributes(
		attribute.Int("destinations.count", len(req.Destinations)),
		attribute.String("budget", string(req.Budget)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "BuildItinerary"))
	started := time.Now()

	start, end, err := validateRequest(req)
	if err != nil {
		l.WarnContext(ctx, "Trip request rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Trip request rejected")
		return nil, err
	}

	days := expandDays(start, end)
	daySpans := splitDaySpans(len(days), len(req.Destinations))
	span.SetAttributes(attribute.Int("trip.days", len(days)))

	rng := s.newRand()
	cache := places.NewSelectionCache(s.logger)
	dedup := NewDedupTracker()
	pinned := make(map[string]string)

	costs := costAccumulator{}
	itinerary := make([]types.DayPlan, 0, len(days))
	dayIdx := 0

	for di, city := range req.Destinations {
		cityDays := daySpans[di]
		if cityDays == 0 {
			continue
		}

		working := buildWorkingSet(req.Interests, cityDays, s.resolver.Catalog(), rng)
		s.pinCategories(city, working, pinned, rng)
		s.prefetchCity(ctx, cache, city, working, pinned)

		hotel := s.hotelFor(ctx, cache, city)

		for i := 0; i < cityDays; i++ {
			activities := make([]types.Activity, 0, 4)

			if dayIdx == 0 {
				activities = append(activities, flightActivity("Home", city, firstLegFlightCost))
				costs.flights += firstLegFlightCost
			} else if i == 0 {
				activities = append(activities, flightActivity(req.Destinations[di-1], city, interCityFlightCost))
				costs.flights += interCityFlightCost
			}

			if hotel != nil {
				activities = append(activities, lodgingActivity(hotel, city, req.Budget))
				costs.accommodations += lodgingCostByTier[req.Budget]
			}

			poiActivity := s.pickDayActivity(ctx, rng, cache, dedup, city, working, i, pinned, req.Budget)
			costs.activities += poiActivity.EstimatedCost
			activities = append(activities, poiActivity)

			lastDayOfTrip := dayIdx == len(days)-1
			if lastDayOfTrip && req.IsRoundTrip() {
				activities = append(activities, flightActivity(city, "Home", returnFlightCost))
				costs.flights += returnFlightCost
			}

			itinerary = append(itinerary, types.DayPlan{
				Date:       days[dayIdx].Format(dateLayout),
				City:       city,
				Activities: activities,
			})
			dayIdx++
		}
	}

	costs.food = dailyFoodRateByTier[req.Budget] * float64(len(days))
	summary := costs.Summary()

	m := metrics.Get()
	m.ItineraryBuildsTotal.Add(ctx, 1)
	m.BuildDurationSeconds.Record(ctx, time.Since(started).Seconds())

	l.InfoContext(ctx, "Itinerary built",
		slog.Int("days", len(days)),
		slog.Int("destinations", len(req.Destinations)),
		slog.Float64("total_cost", summary.Total),
	)
	span.SetStatus(codes.Ok, "Itinerary built")

	return &types.TripPlan{
		TripData: types.TripData{
			Destinations: req.Destinations,
			Dates:        *req.Dates,
			Interests:    req.Interests,
			Budget:       req.Budget,
			RoundTrip:    req.IsRoundTrip(),
		},
		Itinerary:   itinerary,
		CostSummary: summary,
	}, nil
}

// validateRequest checks the request before any planning work begins. The
// interests field must be present in the payload, mirroring the upstream API
// contract, but may be empty.
func validateRequest(req types.TripRequest) (time.Time, time.Time, error) {
	if len(req.Destinations) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: destinations are required", api.ErrValidation)
	}
	for _, city := range req.Destinations {
		if strings.TrimSpace(city) == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: destination names must not be blank", api.ErrValidation)
		}
	}
	if req.Dates == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: dates are required", api.ErrValidation)
	}
	start, err := time.Parse(dateLayout, req.Dates.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start date %q", api.ErrValidation, req.Dates.Start)
	}
	end, err := time.Parse(dateLayout, req.Dates.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end date %q", api.ErrValidation, req.Dates.End)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date precedes start date", api.ErrValidation)
	}
	if req.Interests == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: interests are required", api.ErrValidation)
	}
	if !req.Budget.Valid() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: budget must be one of low, medium, high", api.ErrValidation)
	}
	return start, end, nil
}

// expandDays lists every calendar day in [start, end], inclusive of both
// endpoints.
func expandDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// splitDaySpans divides the trip across destinations by integer division.
// The last destination absorbs the remainder days. This asymmetry matches
// the upstream product behavior and is observable output; do not
// redistribute round-robin.
func splitDaySpans(totalDays, destCount int) []int {
	spans := make([]int, destCount)
	base := totalDays / destCount
	for i := range spans {
		spans[i] = base
	}
	spans[destCount-1] += totalDays % destCount
	return spans
}

// buildWorkingSet pads the requested interests with random catalog draws
// until there is one interest per day in this city. Each raw label is a
// distinct member even when two aliases resolve to the same canonical
// interest. Padding stops early if the catalog is exhausted.
func buildWorkingSet(requested []string, dayCount int, catalog []string, rng *rand.Rand) []string {
	working := make([]string, 0, dayCount)
	included := make(map[string]struct{}, dayCount)
	for _, label := range requested {
		working = append(working, label)
		included[label] = struct{}{}
	}

	for len(working) < dayCount {
		var candidates []string
		for _, label := range catalog {
			if _, ok := included[label]; !ok {
				candidates = append(candidates, label)
			}
		}
		if len(candidates) == 0 {
			break
		}
		pick := candidates[rng.Intn(len(candidates))]
		working = append(working, pick)
		included[pick] = struct{}{}
	}
	return working
}

func pinKey(city, canonicalInterest string) string {
	return city + "|" + canonicalInterest
}

// pinCategories chooses one provider category per (city, canonical interest)
// and fixes it for the remainder of the build, so every day targeting the
// same interest in the same city searches the same identifier set.
func (s *ServiceImpl) pinCategories(city string, working []string, pinned map[string]string, rng *rand.Rand) {
	for _, raw := range working {
		canonical := s.resolver.Resolve(raw)
		key := pinKey(city, canonical)
		if _, ok := pinned[key]; ok {
			continue
		}
		ids := s.resolver.CategoriesFor(canonical)
		pinned[key] = ids[rng.Intn(len(ids))]
	}
}

// prefetchCity populates the selection cache for every pinned category of the
// city plus its lodging query before any day-level selection runs. The
// fetches have no data dependency on each other and run concurrently; dedup
// decisions and random draws stay sequential.
func (s *ServiceImpl) prefetchCity(ctx context.Context, cache *places.SelectionCache, city string, working []string, pinned map[string]string) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cache.GetOrFetchHotel(gctx, city, func(c context.Context) []types.Place {
			return s.provider.SearchByText(c, city, "hotel")
		})
		return nil
	})

	seen := make(map[string]struct{})
	for _, raw := range working {
		categoryID := pinned[pinKey(city, s.resolver.Resolve(raw))]
		if _, dup := seen[categoryID]; dup {
			continue
		}
		seen[categoryID] = struct{}{}
		g.Go(func() error {
			cache.GetOrFetch(gctx, city, categoryID, func(c context.Context) []types.Place {
				return s.provider.SearchByCategory(c, city, categoryID)
			})
			return nil
		})
	}

	// Fetch closures never return errors; failures degrade to empty lists.
	_ = g.Wait()
}

func (s *ServiceImpl) hotelFor(ctx context.Context, cache *places.SelectionCache, city string) *types.Place {
	return cache.GetOrFetchHotel(ctx, city, func(c context.Context) []types.Place {
		return s.provider.SearchByText(c, city, "hotel")
	})
}

func (s *ServiceImpl) candidatesFor(ctx context.Context, cache *places.SelectionCache, city, categoryID string) []types.Place {
	return cache.GetOrFetch(ctx, city, categoryID, func(c context.Context) []types.Place {
		return s.provider.SearchByCategory(c, city, categoryID)
	})
}

// pickDayActivity chooses the day's POI. Among working-set interests that
// still have a selectable candidate it draws one at random; when none remain
// it falls back to the day's pre-assigned interest, and when even that has no
// usable POI it emits the fixed-cost placeholder. The day is never skipped.
func (s *ServiceImpl) pickDayActivity(ctx context.Context, rng *rand.Rand, cache *places.SelectionCache, dedup *DedupTracker, city string, working []string, dayInCity int, pinned map[string]string, budget types.BudgetTier) types.Activity {
	if len(working) == 0 {
		return s.placeholderActivity(ctx, city, "Local Activity")
	}

	var available []string
	for _, raw := range working {
		canonical := s.resolver.Resolve(raw)
		for _, p := range s.candidatesFor(ctx, cache, city, pinned[pinKey(city, canonical)]) {
			if dedup.IsAvailable(p.ID, city, canonical) {
				available = append(available, raw)
				break
			}
		}
	}

	var chosenRaw string
	if len(available) > 0 {
		chosenRaw = available[rng.Intn(len(available))]
	} else {
		chosenRaw = working[dayInCity%len(working)]
	}
	canonical := s.resolver.Resolve(chosenRaw)

	for _, p := range s.candidatesFor(ctx, cache, city, pinned[pinKey(city, canonical)]) {
		if !dedup.IsAvailable(p.ID, city, canonical) {
			continue
		}
		dedup.MarkUsed(p.ID, city, canonical)

		description := p.Address
		if description == "" {
			description = fmt.Sprintf("Popular pick for %s in %s", canonical, city)
		}
		return types.Activity{
			Title:         p.Name,
			Description:   description,
			Category:      canonical,
			EstimatedCost: activityCostByTier[budget],
			Website:       p.Website,
			PlaceID:       p.ID,
			Rank:          p.Rank,
		}
	}

	return s.placeholderActivity(ctx, city, canonical)
}

// placeholderActivity is the NoCandidateFound recovery path: a synthetic
// generic activity with a fixed cost and no POI identifier. Logged as a
// quality signal, not surfaced as an error.
func (s *ServiceImpl) placeholderActivity(ctx context.Context, city, category string) types.Activity {
	s.logger.WarnContext(ctx, "No unused POI available, emitting placeholder activity",
		slog.String("city", city), slog.String("interest", category))
	metrics.Get().FallbackActivitiesTotal.Add(ctx, 1)

	return types.Activity{
		Title:         "Local Activity",
		Description:   fmt.Sprintf("Explore %s at your own pace.", city),
		Category:      category,
		EstimatedCost: placeholderActivityCost,
		Fallback:      true,
	}
}

func flightActivity(from, to string, cost float64) types.Activity {
	return types.Activity{
		Title:         fmt.Sprintf("Flight: %s → %s", from, to),
		Description:   fmt.Sprintf("Travel from %s to %s.", from, to),
		Category:      "Flight",
		EstimatedCost: cost,
	}
}

func lodgingActivity(hotel *types.Place, city string, budget types.BudgetTier) types.Activity {
	description := hotel.Address
	if description == "" {
		description = fmt.Sprintf("Overnight stay in %s.", city)
	}
	return types.Activity{
		Title:         fmt.Sprintf("Stay at %s", hotel.Name),
		Description:   description,
		Category:      "Accommodation",
		EstimatedCost: lodgingCostByTier[budget],
		Website:       hotel.Website,
		PlaceID:       hotel.ID,
		Rank:          hotel.Rank,
	}
}
