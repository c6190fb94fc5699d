package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbkolda/tripbotic/app/observability/metrics"
	"github.com/kbkolda/tripbotic/config"
	"github.com/kbkolda/tripbotic/internal/types"
)

// missingPopularity sorts provider records without a distance metric last.
const missingPopularity = 999999

// Provider is the search capability the planner consumes. Implementations
// never surface transport errors: a failed or non-2xx call degrades to an
// empty list, which the planner treats as a normal recoverable condition.
type Provider interface {
	SearchByCategory(ctx context.Context, city, categoryID string) []types.Place
	SearchByText(ctx context.Context, city, query string) []types.Place
}

var _ Provider = (*FoursquareClient)(nil)

// FoursquareClient queries the Foursquare places search API and normalizes
// its records into types.Place at ingestion.
type FoursquareClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	apiVersion string
	limit      int
	timeout    time.Duration
}

// NewFoursquareClient creates a provider client. The API key comes from the
// environment, never from source.
func NewFoursquareClient(cfg *config.Config, apiKey string, logger *slog.Logger) *FoursquareClient {
	limit := cfg.Places.Limit
	if limit <= 0 {
		limit = 20
	}
	timeout := cfg.Places.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &FoursquareClient{
		httpClient: &http.Client{},
		logger:     logger,
		baseURL:    cfg.Places.BaseURL,
		apiKey:     apiKey,
		apiVersion: cfg.Places.APIVersion,
		limit:      limit,
		timeout:    timeout,
	}
}

// SearchByCategory returns ranked candidate places for a city and provider
// category id, most popular first.
func (c *FoursquareClient) SearchByCategory(ctx context.Context, city, categoryID string) []types.Place {
	ctx, span := otel.Tracer("FoursquareClient").Start(ctx, "SearchByCategory", trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.String("category.id", categoryID),
	))
	defer span.End()

	params := url.Values{}
	params.Set("near", city)
	params.Set("fsq_category_ids", categoryID)
	return c.search(ctx, span, params)
}

// SearchByText returns ranked candidate places for a city and free-text
// query, most popular first. Used for lodging lookups.
func (c *FoursquareClient) SearchByText(ctx context.Context, city, query string) []types.Place {
	ctx, span := otel.Tracer("FoursquareClient").Start(ctx, "SearchByText", trace.WithAttributes(
		attribute.String("city.name", city),
		attribute.String("query", query),
	))
	defer span.End()

	params := url.Values{}
	params.Set("near", city)
	params.Set("query", query)
	return c.search(ctx, span, params)
}

// fsqPlace mirrors the provider's wire shape. Older responses carry the
// identifier under fsq_id or id instead of fsq_place_id.
type fsqPlace struct {
	FsqPlaceID string `json:"fsq_place_id"`
	FsqID      string `json:"fsq_id"`
	LegacyID   string `json:"id"`
	Name       string `json:"name"`
	Location   struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"location"`
	Categories []struct {
		FsqCategoryID string `json:"fsq_category_id"`
		LegacyID      string `json:"id"`
		Name          string `json:"name"`
	} `json:"categories"`
	Website  string `json:"website"`
	Distance *int   `json:"distance"`
}

func (c *FoursquareClient) search(ctx context.Context, span trace.Span, params url.Values) []types.Place {
	params.Set("limit", fmt.Sprintf("%d", c.limit))
	params.Set("sort", "POPULARITY")

	searchURL := fmt.Sprintf("%s/places/search?%s", c.baseURL, params.Encode())
	metrics.Get().ProviderCallsTotal.Add(ctx, 1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to build places request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build request")
		return nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Places-Api-Version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Places request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Places request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "Places request returned non-success status", slog.Int("status", resp.StatusCode))
		span.SetStatus(codes.Error, "Non-success status from places provider")
		return nil
	}

	var body struct {
		Results []fsqPlace `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode places response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to decode places response")
		return nil
	}

	mapped := c.normalize(ctx, body.Results)
	span.SetAttributes(attribute.Int("places.count", len(mapped)))
	span.SetStatus(codes.Ok, "Places fetched")
	return mapped
}

// normalize maps the external record shape to types.Place once, at ingestion:
// identifier fallback chain, popularity sentinel, ascending sort, 1-based
// re-rank. Records without any identifier are kept but logged; they are
// unselectable downstream.
func (c *FoursquareClient) normalize(ctx context.Context, results []fsqPlace) []types.Place {
	mapped := make([]types.Place, 0, len(results))
	for _, p := range results {
		id := p.FsqPlaceID
		if id == "" {
			id = p.FsqID
		}
		if id == "" {
			id = p.LegacyID
		}
		if id == "" {
			c.logger.WarnContext(ctx, "Place record missing identifier", slog.String("name", p.Name))
		}

		popularity := missingPopularity
		if p.Distance != nil {
			popularity = *p.Distance
		}

		categories := make([]types.PlaceCategory, 0, len(p.Categories))
		for _, cat := range p.Categories {
			catID := cat.FsqCategoryID
			if catID == "" {
				catID = cat.LegacyID
			}
			categories = append(categories, types.PlaceCategory{ID: catID, Name: cat.Name})
		}

		mapped = append(mapped, types.Place{
			ID:         id,
			Name:       p.Name,
			Address:    p.Location.FormattedAddress,
			Categories: categories,
			Website:    p.Website,
			Popularity: popularity,
		})
	}

	sort.SliceStable(mapped, func(i, j int) bool {
		return mapped[i].Popularity < mapped[j].Popularity
	})
	for i := range mapped {
		mapped[i].Rank = i + 1
	}
	return mapped
}
