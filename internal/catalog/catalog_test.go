package catalog

import (
	"math"
	"testing"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

func located(id, name, city, company string, lon, lat float64) models.Restaurant {
	return models.Restaurant{
		ID: id, Name: name, City: city, Company: company,
		Location: &models.Location{Type: "Point", Coordinates: []float64{lon, lat}},
	}
}

func testSet() []models.Restaurant {
	return []models.Restaurant{
		{ID: "1", Name: "Aalto Bistro", City: "Helsinki", Company: "A"},
		{ID: "2", Name: "Campus Cafe", City: "Espoo", Company: "B"},
		{ID: "3", Name: "Harbor Grill", City: "Helsinki", Company: "B"},
		{ID: "4", Name: "No Facets"},
	}
}

func TestFacets_DistinctSortedNonEmpty(t *testing.T) {
	c := New()
	c.Replace(testSet())

	facets := c.Facets()

	wantCities := []string{"Espoo", "Helsinki"}
	if len(facets.Cities) != len(wantCities) {
		t.Fatalf("expected %d cities, got %v", len(wantCities), facets.Cities)
	}
	for i, city := range wantCities {
		if facets.Cities[i] != city {
			t.Errorf("cities[%d] = %q, want %q", i, facets.Cities[i], city)
		}
	}

	wantCompanies := []string{"A", "B"}
	if len(facets.Companies) != len(wantCompanies) {
		t.Fatalf("expected %d companies, got %v", len(wantCompanies), facets.Companies)
	}
	for i, company := range wantCompanies {
		if facets.Companies[i] != company {
			t.Errorf("companies[%d] = %q, want %q", i, facets.Companies[i], company)
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{name: "no filter returns everything", filter: Filter{}, wantIDs: []string{"1", "2", "3", "4"}},
		{name: "city filter", filter: Filter{City: "Espoo"}, wantIDs: []string{"2"}},
		{name: "company filter", filter: Filter{Company: "B"}, wantIDs: []string{"2", "3"}},
		{name: "city and company combined", filter: Filter{City: "Helsinki", Company: "B"}, wantIDs: []string{"3"}},
		{name: "absent value yields empty result", filter: Filter{Company: "Z"}, wantIDs: []string{}},
	}

	c := New()
	c.Replace(testSet())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Apply(tt.filter)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d results, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestApply_AlwaysRecomputesFromFullSet(t *testing.T) {
	c := New()
	c.Replace(testSet())

	// Narrow first, then widen; the wider filter must see the full set.
	if got := c.Apply(Filter{City: "Espoo"}); len(got) != 1 {
		t.Fatalf("expected 1 result for Espoo, got %d", len(got))
	}
	if got := c.Apply(Filter{}); len(got) != 4 {
		t.Errorf("expected full set after widening filter, got %d", len(got))
	}
}

func TestHaversine(t *testing.T) {
	if d := Haversine(60.17, 24.93, 60.17, 24.93); d != 0 {
		t.Errorf("expected zero distance for identical points, got %v", d)
	}

	d1 := Haversine(60.17, 24.93, 60.20, 25.00)
	d2 := Haversine(60.20, 25.00, 60.17, 24.93)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("expected symmetric distance, got %v and %v", d1, d2)
	}

	// Helsinki to Espoo city centers, roughly 16 km.
	d := Haversine(60.1699, 24.9384, 60.2055, 24.6559)
	if d < 14000 || d > 18000 {
		t.Errorf("expected ~16km, got %v m", d)
	}
}

func TestNearest(t *testing.T) {
	c := New()
	c.Replace([]models.Restaurant{
		located("far", "Far Kitchen", "Vantaa", "A", 25.5, 60.5),
		{ID: "nocoords", Name: "Unmapped"},
		located("near", "Near Deli", "Helsinki", "A", 24.94, 60.17),
	})

	got, dist, ok := c.Nearest(60.1699, 24.9384)
	if !ok {
		t.Fatal("expected a nearest restaurant")
	}
	if got.ID != "near" {
		t.Errorf("expected nearest=near, got %s", got.ID)
	}
	if dist <= 0 || dist > 2000 {
		t.Errorf("unexpected distance %v", dist)
	}
}

func TestNearest_TieFirstEncounteredWins(t *testing.T) {
	c := New()
	c.Replace([]models.Restaurant{
		located("first", "First", "", "", 24.94, 60.17),
		located("second", "Second", "", "", 24.94, 60.17),
	})

	got, _, ok := c.Nearest(60.0, 24.0)
	if !ok {
		t.Fatal("expected a nearest restaurant")
	}
	if got.ID != "first" {
		t.Errorf("expected first encountered minimum to win, got %s", got.ID)
	}
}

func TestNearest_NoCoordinatesAnywhere(t *testing.T) {
	c := New()
	c.Replace([]models.Restaurant{{ID: "a"}, {ID: "b"}})

	if _, _, ok := c.Nearest(60.0, 24.0); ok {
		t.Error("expected no nearest when no restaurant has coordinates")
	}
}

func TestByID(t *testing.T) {
	c := New()
	c.Replace(testSet())

	if r, ok := c.ByID("2"); !ok || r.Name != "Campus Cafe" {
		t.Errorf("expected Campus Cafe, got %+v ok=%v", r, ok)
	}
	if _, ok := c.ByID("missing"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestReplace_SwapsWholesale(t *testing.T) {
	c := New()
	c.Replace(testSet())
	c.Replace([]models.Restaurant{{ID: "9", Name: "Only One"}})

	all := c.All()
	if len(all) != 1 || all[0].ID != "9" {
		t.Errorf("expected wholesale replacement, got %v", all)
	}
}
