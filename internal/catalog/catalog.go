// Package catalog holds the last fetched restaurant set and derives the
// filter facets from it. The set is replaced wholesale on every reload.
package catalog

import (
	"math"
	"sort"
	"sync"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

const earthRadiusMeters = 6371000

// Catalog is the in-memory snapshot of the full restaurant set.
type Catalog struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
}

func New() *Catalog {
	return &Catalog{}
}

// Replace swaps in a freshly fetched restaurant set.
func (c *Catalog) Replace(restaurants []models.Restaurant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restaurants = make([]models.Restaurant, len(restaurants))
	copy(c.restaurants, restaurants)
}

// All returns a copy of the full set in fetch order.
func (c *Catalog) All() []models.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Restaurant, len(c.restaurants))
	copy(out, c.restaurants)
	return out
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.restaurants)
}

// ByID finds a restaurant in the current snapshot.
func (c *Catalog) ByID(id string) (models.Restaurant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

// Facets are the distinct filter values derived from the full set.
type Facets struct {
	Cities    []string `json:"cities"`
	Companies []string `json:"companies"`
}

// Facets collects the distinct non-empty city and company values, each
// sorted ascending.
func (c *Catalog) Facets() Facets {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cities := map[string]struct{}{}
	companies := map[string]struct{}{}
	for _, r := range c.restaurants {
		if r.City != "" {
			cities[r.City] = struct{}{}
		}
		if r.Company != "" {
			companies[r.Company] = struct{}{}
		}
	}

	return Facets{
		Cities:    sortedKeys(cities),
		Companies: sortedKeys(companies),
	}
}

// Filter selects catalog entries by exact city and/or company match. An
// empty field matches everything.
type Filter struct {
	City    string `json:"city"`
	Company string `json:"company"`
}

// Apply recomputes the filtered result from the full cached set, never
// from a previously filtered subset.
func (c *Catalog) Apply(f Filter) []models.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]models.Restaurant, 0, len(c.restaurants))
	for _, r := range c.restaurants {
		if f.City != "" && r.City != f.City {
			continue
		}
		if f.Company != "" && r.Company != f.Company {
			continue
		}
		result = append(result, r)
	}
	return result
}

// Haversine returns the great-circle distance in meters between two
// (latitude, longitude) points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Nearest returns the catalog entry closest to the given position, with
// its distance in meters. Restaurants without coordinates are skipped.
// On equal distances the first entry in catalog order wins.
func (c *Catalog) Nearest(lat, lon float64) (models.Restaurant, float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var nearest models.Restaurant
	minDist := math.Inf(1)
	found := false

	for _, r := range c.restaurants {
		rLat, rLon, ok := r.Coordinates()
		if !ok {
			continue
		}
		dist := Haversine(lat, lon, rLat, rLon)
		if dist < minDist {
			minDist = dist
			nearest = r
			found = true
		}
	}

	return nearest, minDist, found
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
