package views

import (
	"testing"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

type staticFavourites map[string]bool

func (s staticFavourites) IsFavourite(id string) bool { return s[id] }

func TestBuildList(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: "1", Name: "Aalto Bistro", City: "Helsinki", Company: "A"},
		{ID: "2", Name: "Campus Cafe", City: "Espoo"},
		{ID: "3", Company: "B"},
	}
	favs := staticFavourites{"2": true}

	entries := BuildList(restaurants, favs, "3")

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Meta != "Helsinki • A" {
		t.Errorf("expected joined meta, got %q", entries[0].Meta)
	}
	if entries[1].Meta != "Espoo" {
		t.Errorf("expected city-only meta, got %q", entries[1].Meta)
	}
	if !entries[1].Favourite {
		t.Error("expected entry 2 flagged favourite")
	}
	if entries[2].Name != "Unnamed restaurant" {
		t.Errorf("expected name fallback, got %q", entries[2].Name)
	}
	if entries[2].Meta != "B" {
		t.Errorf("expected company-only meta, got %q", entries[2].Meta)
	}
	if !entries[2].Active || entries[0].Active {
		t.Error("expected only the selected entry to be active")
	}
}

func TestBuildList_NilFavourites(t *testing.T) {
	entries := BuildList([]models.Restaurant{{ID: "1", Name: "X"}}, nil, "")
	if entries[0].Favourite {
		t.Error("expected favourite false with nil checker")
	}
}

func TestBuildMarkers_SkipsMissingCoordinates(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: "1", Name: "Mapped", City: "Helsinki",
			Location: &models.Location{Type: "Point", Coordinates: []float64{24.94, 60.17}}},
		{ID: "2", Name: "Unmapped"},
		{ID: "3", Location: &models.Location{Type: "Point", Coordinates: []float64{24.0}}},
	}

	markers := BuildMarkers(restaurants)

	if len(markers) != 1 {
		t.Fatalf("expected one marker, got %d", len(markers))
	}
	m := markers[0]
	if m.ID != "1" || m.Latitude != 60.17 || m.Longitude != 24.94 {
		t.Errorf("unexpected marker %+v", m)
	}
}

func TestMarkerFor(t *testing.T) {
	r := models.Restaurant{ID: "1",
		Location: &models.Location{Type: "Point", Coordinates: []float64{24.94, 60.17}}}
	m, ok := MarkerFor(r)
	if !ok {
		t.Fatal("expected a marker")
	}
	if m.Name != "Unnamed restaurant" {
		t.Errorf("expected name fallback, got %q", m.Name)
	}

	if _, ok := MarkerFor(models.Restaurant{ID: "2"}); ok {
		t.Error("expected no marker without coordinates")
	}
}
