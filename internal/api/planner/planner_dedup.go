package planner

// DedupTracker records which POI identifiers have been consumed during one
// itinerary build, in two scopes: per (city, canonical interest) and
// trip-wide. An identifier entering either scope is excluded from every later
// day selection in the same build. Trackers are build-scoped; never share one
// across requests.
type DedupTracker struct {
	local  map[string]map[string]struct{}
	global map[string]struct{}
}

// NewDedupTracker creates an empty tracker.
func NewDedupTracker() *DedupTracker {
	return &DedupTracker{
		local:  make(map[string]map[string]struct{}),
		global: make(map[string]struct{}),
	}
}

func localScopeKey(city, canonicalInterest string) string {
	return city + "|" + canonicalInterest
}

// IsAvailable reports whether a POI may still be selected: the identifier is
// non-empty and absent from both the local and the global scope.
func (d *DedupTracker) IsAvailable(poiID, city, canonicalInterest string) bool {
	if poiID == "" {
		return false
	}
	if _, used := d.global[poiID]; used {
		return false
	}
	if ids, ok := d.local[localScopeKey(city, canonicalInterest)]; ok {
		if _, used := ids[poiID]; used {
			return false
		}
	}
	return true
}

// MarkUsed consumes a POI identifier in both scopes. Idempotent; empty
// identifiers are ignored.
func (d *DedupTracker) MarkUsed(poiID, city, canonicalInterest string) {
	if poiID == "" {
		return
	}
	key := localScopeKey(city, canonicalInterest)
	if _, ok := d.local[key]; !ok {
		d.local[key] = make(map[string]struct{})
	}
	d.local[key][poiID] = struct{}{}
	d.global[poiID] = struct{}{}
}
