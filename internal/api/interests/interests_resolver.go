package interests

import (
	"log/slog"
)

// FallbackCategoryID is the sentinel provider category used when a canonical
// interest has no configured category mapping. Searches against it are
// expected to come back empty and flow through the planner's placeholder path.
const FallbackCategoryID = "0"

// categoryIDsByInterest maps a canonical interest to its ordered Foursquare
// category identifiers. When an interest lists more than one, the planner
// pins a single choice per (city, interest) for the whole build.
var categoryIDsByInterest = map[string][]string{
	"Food & Restaurants":      {"4d4b7105d754a06374d81259"},
	"Coffee & Cafés":          {"4bf58dd8d48988d1e0931735"},
	"Bars & Nightlife":        {"4d4b7105d754a06376d81259"},
	"Outdoor & Nature":        {"4d4b7105d754a06377d81259", "56aa371be4b08b9a8d5734c3"},
	"Arts & Museums":          {"4bf58dd8d48988d181941735", "4bf58dd8d48988d18f941735"},
	"History & Sights":        {"4deefb944765f83613cdba6e", "4bf58dd8d48988d12d941735"},
	"Shopping":                {"4bf58dd8d48988d1f9941735"},
	"Entertainment & Events":  {"4d4b7104d754a06370d81259"},
	"Travel & Transportation": {"4bf58dd8d48988d1ed931735"},
}

// aliasByRawInterest maps user-facing interest labels to canonical interests.
// Labels without an entry are treated as canonical themselves.
var aliasByRawInterest = map[string]string{
	"Museums":       "Arts & Museums",
	"History":       "History & Sights",
	"Nature":        "Outdoor & Nature",
	"Food":          "Food & Restaurants",
	"Coffee":        "Coffee & Cafés",
	"Bars":          "Bars & Nightlife",
	"Nightlife":     "Bars & Nightlife",
	"Shopping":      "Shopping",
	"Beaches":       "Outdoor & Nature",
	"Hiking":        "Outdoor & Nature",
	"Art":           "Arts & Museums",
	"Tech":          "Entertainment & Events",
	"Local Events":  "Entertainment & Events",
	"Entertainment": "Entertainment & Events",
	"Travel":        "Travel & Transportation",
}

// catalog is the ordered canonical interest catalog. Order matters: the
// planner draws padding interests from it and tests pin the order down.
var catalog = []string{
	"Food & Restaurants",
	"Coffee & Cafés",
	"Bars & Nightlife",
	"Outdoor & Nature",
	"Arts & Museums",
	"History & Sights",
	"Shopping",
	"Entertainment & Events",
	"Travel & Transportation",
}

// Resolver maps raw interest labels to canonical interests and provider
// categories. Resolution never fails: unknown labels degrade to themselves
// and to the fallback category so a trip build cannot abort on a cosmetic
// mismatch.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver instance.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve maps a raw interest label to its canonical interest. Labels with no
// alias entry are themselves treated as canonical.
func (r *Resolver) Resolve(rawInterest string) string {
	if canonical, ok := aliasByRawInterest[rawInterest]; ok {
		return canonical
	}
	return rawInterest
}

// CategoriesFor returns the ordered provider category ids for a canonical
// interest. The result is never empty: unmapped interests get a
// single-element fallback list.
func (r *Resolver) CategoriesFor(canonical string) []string {
	if ids, ok := categoryIDsByInterest[canonical]; ok && len(ids) > 0 {
		out := make([]string, len(ids))
		copy(out, ids)
		return out
	}
	r.logger.Debug("No category mapping for interest, using fallback", slog.String("interest", canonical))
	return []string{FallbackCategoryID}
}

// Catalog returns the full ordered canonical interest catalog.
func (r *Resolver) Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// Aliases returns the raw-label alias table, used by the interests endpoint
// so clients can render selectable labels.
func (r *Resolver) Aliases() map[string]string {
	out := make(map[string]string, len(aliasByRawInterest))
	for k, v := range aliasByRawInterest {
		out[k] = v
	}
	return out
}
