package types

// PlaceCategory is a provider category tag attached to a place.
type PlaceCategory struct {
	ID   string `json:"fsq_category_id"`
	Name string `json:"name"`
}

// Place is a normalized point-of-interest candidate as ingested from the
// places provider. Records can arrive without an identifier; they are kept in
// candidate lists for visibility but are never selectable.
type Place struct {
	ID         string          `json:"fsq_id"`
	Name       string          `json:"name"`
	Address    string          `json:"address,omitempty"`
	Categories []PlaceCategory `json:"categories,omitempty"`
	Website    string          `json:"website,omitempty"`
	// Popularity is the provider's distance metric, lower meaning closer or
	// more popular. Records missing the metric carry a large sentinel so they
	// sort last.
	Popularity int `json:"popularity"`
	// Rank is 1-based, assigned after sorting ascending by Popularity.
	Rank int `json:"rank"`
}
