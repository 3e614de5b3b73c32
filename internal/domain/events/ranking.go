package events

import (
	"sort"
	"strings"

	"github.com/eventease/server/internal/geo"
)

// Strategy selects how a candidate event set is ordered for a viewer.
type Strategy string

const (
	// StrategyProviderPriority orders SearchApi.io events ahead of all other
	// sources, each group sorted by start time descending. This is the
	// default ordering.
	StrategyProviderPriority Strategy = "provider"

	// StrategyLocationTiers is the legacy tiered fallback: viewer coordinates
	// within a radius, then city, then country, then latest events. The first
	// tier with a non-empty result wins.
	StrategyLocationTiers Strategy = "location"
)

const prioritizedSource = "searchapi.io"

// DefaultRadiusKm bounds the coordinate tier of the legacy strategy when the
// caller does not supply a radius.
const DefaultRadiusKm = 50

// ViewerProfile is the location profile the ranking resolver works from.
// All fields are optional; missing data degrades the legacy strategy through
// its fallback tiers.
type ViewerProfile struct {
	Latitude  *float64
	Longitude *float64
	City      *string
	Country   *string
}

func (v ViewerProfile) hasCoordinates() bool {
	return v.Latitude != nil && v.Longitude != nil
}

// RankOptions configures a Rank call. Query is a free-text filter applied
// before ordering; RadiusKm only affects StrategyLocationTiers.
type RankOptions struct {
	Strategy Strategy
	Query    string
	RadiusKm float64
}

// Rank orders and selects the events to present to a viewer. An empty result
// is valid output, never an error.
func Rank(items []Event, viewer ViewerProfile, opts RankOptions) []Event {
	if opts.Strategy == StrategyLocationTiers {
		return rankLocationTiers(items, viewer, opts.RadiusKm)
	}
	return rankProviderPriority(items, opts.Query)
}

func rankProviderPriority(items []Event, query string) []Event {
	filtered := filterQuery(items, query)

	var prioritized, rest []Event
	for _, event := range filtered {
		if event.Source != nil && strings.EqualFold(*event.Source, prioritizedSource) {
			prioritized = append(prioritized, event)
		} else {
			rest = append(rest, event)
		}
	}
	sortByStartTimeDesc(prioritized)
	sortByStartTimeDesc(rest)
	return append(prioritized, rest...)
}

func rankLocationTiers(items []Event, viewer ViewerProfile, radiusKm float64) []Event {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	if viewer.hasCoordinates() {
		if nearby := nearbyEvents(items, *viewer.Latitude, *viewer.Longitude, radiusKm); len(nearby) > 0 {
			return nearby
		}
	}
	if viewer.City != nil && *viewer.City != "" {
		if matched := matchField(items, *viewer.City, func(e Event) *string { return e.City }); len(matched) > 0 {
			return matched
		}
	}
	if viewer.Country != nil && *viewer.Country != "" {
		if matched := matchField(items, *viewer.Country, func(e Event) *string { return e.Country }); len(matched) > 0 {
			return matched
		}
	}

	latest := make([]Event, len(items))
	copy(latest, items)
	sortByStartTimeDesc(latest)
	return latest
}

func nearbyEvents(items []Event, lat, lon, radiusKm float64) []Event {
	type scored struct {
		event    Event
		distance float64
	}
	var candidates []scored
	for _, event := range items {
		if !event.HasCoordinates() {
			continue
		}
		d := geo.DistanceKm(lat, lon, *event.Latitude, *event.Longitude)
		if d <= radiusKm {
			candidates = append(candidates, scored{event: event, distance: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	result := make([]Event, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.event)
	}
	return result
}

// matchField compares case-insensitively. The original data sources disagree
// on casing for city and country names, so exact matching drops legitimate
// results.
func matchField(items []Event, value string, field func(Event) *string) []Event {
	var matched []Event
	for _, event := range items {
		if v := field(event); v != nil && strings.EqualFold(*v, value) {
			matched = append(matched, event)
		}
	}
	return matched
}

func filterQuery(items []Event, query string) []Event {
	query = strings.TrimSpace(query)
	if query == "" {
		result := make([]Event, len(items))
		copy(result, items)
		return result
	}
	needle := strings.ToLower(query)
	var filtered []Event
	for _, event := range items {
		if containsFold(event.Title, needle) ||
			containsFold(event.Description, needle) ||
			containsFoldPtr(event.City, needle) ||
			containsFoldPtr(event.EventType, needle) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func containsFoldPtr(haystack *string, lowerNeedle string) bool {
	return haystack != nil && containsFold(*haystack, lowerNeedle)
}

// sortByStartTimeDesc orders later events first; events without a start time
// sort last.
func sortByStartTimeDesc(items []Event) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].StartTime, items[j].StartTime
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}
