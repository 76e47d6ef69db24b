// Package views shapes catalog data into the list and map structures the
// UI layer renders.
package views

import (
	"github.com/akorhonen/restaurant-browser/internal/models"
)

const nameFallback = "Unnamed restaurant"

// ListEntry is one row of the restaurant list.
type ListEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Meta      string `json:"meta,omitempty"`
	Favourite bool   `json:"favourite"`
	Active    bool   `json:"active"`
}

// Marker is one map pin.
type Marker struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapProvider receives marker updates. Implementations adapt a concrete
// map backend; NopMap serves headless runs.
type MapProvider interface {
	SetMarkers(markers []Marker)
	HighlightNearest(marker Marker, distanceMeters float64)
}

// NopMap discards all map updates.
type NopMap struct{}

func (NopMap) SetMarkers([]Marker)              {}
func (NopMap) HighlightNearest(Marker, float64) {}

// FavouriteChecker reports list membership for the favourite flag.
type FavouriteChecker interface {
	IsFavourite(id string) bool
}

// BuildList renders restaurants in the given order. Meta joins city and
// company when both are present.
func BuildList(restaurants []models.Restaurant, favourites FavouriteChecker, activeID string) []ListEntry {
	entries := make([]ListEntry, 0, len(restaurants))
	for _, r := range restaurants {
		name := r.Name
		if name == "" {
			name = nameFallback
		}
		entries = append(entries, ListEntry{
			ID:        r.ID,
			Name:      name,
			Meta:      metaLine(r),
			Favourite: favourites != nil && favourites.IsFavourite(r.ID),
			Active:    r.ID == activeID,
		})
	}
	return entries
}

func metaLine(r models.Restaurant) string {
	switch {
	case r.City != "" && r.Company != "":
		return r.City + " • " + r.Company
	case r.City != "":
		return r.City
	default:
		return r.Company
	}
}

// BuildMarkers returns a pin for every restaurant with usable
// coordinates; the rest are skipped without complaint.
func BuildMarkers(restaurants []models.Restaurant) []Marker {
	markers := make([]Marker, 0, len(restaurants))
	for _, r := range restaurants {
		lat, lon, ok := r.Coordinates()
		if !ok {
			continue
		}
		name := r.Name
		if name == "" {
			name = nameFallback
		}
		markers = append(markers, Marker{
			ID:        r.ID,
			Name:      name,
			City:      r.City,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return markers
}

// MarkerFor builds the single pin for a restaurant, reporting whether it
// has coordinates.
func MarkerFor(r models.Restaurant) (Marker, bool) {
	lat, lon, ok := r.Coordinates()
	if !ok {
		return Marker{}, false
	}
	name := r.Name
	if name == "" {
		name = nameFallback
	}
	return Marker{ID: r.ID, Name: name, City: r.City, Latitude: lat, Longitude: lon}, true
}
