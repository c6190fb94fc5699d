package places

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/kbkolda/tripbotic/internal/types"
)

var (
	hotelCategoryPattern = regexp.MustCompile(`(?i)hotel|resort`)
	hotelNamePattern     = regexp.MustCompile(`(?i)hotel|inn|resort`)
)

// SelectionCache memoizes provider results for the lifetime of a single
// itinerary build: at most one provider call per distinct (city, category)
// pair and per city lodging query. It is scoped per build and must not be
// shared across requests.
type SelectionCache struct {
	store  *cache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewSelectionCache creates a build-scoped cache.
func NewSelectionCache(logger *slog.Logger) *SelectionCache {
	return &SelectionCache{
		store:  cache.New(cache.NoExpiration, 0),
		logger: logger,
	}
}

// GetOrFetch returns the cached candidate list for (city, categoryID) or runs
// fetch exactly once to populate it. Concurrent callers on the same key share
// a single fetch.
func (s *SelectionCache) GetOrFetch(ctx context.Context, city, categoryID string, fetch func(context.Context) []types.Place) []types.Place {
	key := "places|" + city + "|" + categoryID
	if cached, found := s.store.Get(key); found {
		if result, ok := cached.([]types.Place); ok {
			return result
		}
	}

	result, _, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, found := s.store.Get(key); found {
			return cached, nil
		}
		fetched := fetch(ctx)
		s.store.Set(key, fetched, cache.NoExpiration)
		s.logger.DebugContext(ctx, "Cached place candidates",
			slog.String("city", city), slog.String("category", categoryID), slog.Int("count", len(fetched)))
		return fetched, nil
	})
	return result.([]types.Place)
}

// GetOrFetchHotel returns the city's lodging choice, fetching candidates at
// most once per city. Preference order: a category tag matching
// hotel/resort, then a name matching hotel/inn/resort, then the most popular
// result. Returns nil when the provider has nothing.
func (s *SelectionCache) GetOrFetchHotel(ctx context.Context, city string, fetch func(context.Context) []types.Place) *types.Place {
	key := "hotel|" + city
	if cached, found := s.store.Get(key); found {
		if result, ok := cached.(*types.Place); ok {
			return result
		}
	}

	result, _, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, found := s.store.Get(key); found {
			return cached, nil
		}
		choice := pickHotel(fetch(ctx))
		s.store.Set(key, choice, cache.NoExpiration)
		if choice != nil {
			s.logger.DebugContext(ctx, "Cached lodging choice",
				slog.String("city", city), slog.String("hotel", choice.Name))
		} else {
			s.logger.WarnContext(ctx, "No lodging candidates for city", slog.String("city", city))
		}
		return choice, nil
	})
	return result.(*types.Place)
}

func pickHotel(candidates []types.Place) *types.Place {
	if len(candidates) == 0 {
		return nil
	}
	for i, p := range candidates {
		for _, cat := range p.Categories {
			if hotelCategoryPattern.MatchString(cat.Name) {
				return &candidates[i]
			}
		}
	}
	for i, p := range candidates {
		if hotelNamePattern.MatchString(p.Name) {
			return &candidates[i]
		}
	}
	return &candidates[0]
}
