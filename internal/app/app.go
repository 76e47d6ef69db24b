// Package app is the controller behind the UI endpoints. It owns the
// catalog, the active filter, the favourite list and the menu selection,
// and renders them into view structures.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/akorhonen/restaurant-browser/internal/catalog"
	"github.com/akorhonen/restaurant-browser/internal/favourites"
	"github.com/akorhonen/restaurant-browser/internal/menus"
	"github.com/akorhonen/restaurant-browser/internal/models"
	"github.com/akorhonen/restaurant-browser/internal/views"
)

const catalogFailureMessage = "Failed to load restaurants. Please try again later."

// CatalogSource fetches the restaurant list.
type CatalogSource interface {
	Restaurants(ctx context.Context) ([]models.Restaurant, error)
}

// ErrUnknownRestaurant marks a selection of an id missing from the
// catalog.
type ErrUnknownRestaurant struct {
	ID string
}

func (e *ErrUnknownRestaurant) Error() string {
	return fmt.Sprintf("unknown restaurant %q", e.ID)
}

// CatalogView is the rendered restaurant list with its filter controls.
type CatalogView struct {
	Entries []views.ListEntry `json:"entries"`
	Facets  catalog.Facets    `json:"facets"`
	Filter  catalog.Filter    `json:"filter"`
	Error   string            `json:"error,omitempty"`
}

// LocationView is the result of a locate action.
type LocationView struct {
	Nearest        *views.Marker `json:"nearest,omitempty"`
	DistanceMeters float64       `json:"distanceMeters,omitempty"`
}

// App wires the domain pieces together.
type App struct {
	source     CatalogSource
	catalog    *catalog.Catalog
	favourites *favourites.Reconciler
	selector   *menus.Selector
	mapView    views.MapProvider
	logger     *slog.Logger

	mu      sync.Mutex
	filter  catalog.Filter
	loadErr string

	// The selector renders asynchronously relative to App.mu, so the
	// latest menu view lives behind its own lock.
	menuMu   sync.Mutex
	menuView menus.View
}

// New builds the controller. The selector's render sink is wired here so
// menu views always land in MenuView; favourite syncs re-render the map
// so the primary pin stays current.
func New(source CatalogSource, fetcher menus.Fetcher, favs *favourites.Reconciler, mapView views.MapProvider, logger *slog.Logger) *App {
	if mapView == nil {
		mapView = views.NopMap{}
	}
	a := &App{
		source:     source,
		catalog:    catalog.New(),
		favourites: favs,
		mapView:    mapView,
		logger:     logger,
	}
	a.selector = menus.NewSelector(fetcher, logger, a.setMenuView)
	favs.SetOnChange(a.refreshMarkers)
	return a
}

func (a *App) setMenuView(v menus.View) {
	a.menuMu.Lock()
	a.menuView = v
	a.menuMu.Unlock()
}

// MenuView returns the most recent menu render.
func (a *App) MenuView() menus.View {
	a.menuMu.Lock()
	defer a.menuMu.Unlock()
	return a.menuView
}

// LoadCatalog fetches the restaurant list and replaces the catalog
// wholesale. On failure the previous catalog is kept and the view carries
// an error message.
func (a *App) LoadCatalog(ctx context.Context) CatalogView {
	restaurants, err := a.source.Restaurants(ctx)

	a.mu.Lock()
	if err != nil {
		a.logger.Error("loading catalog failed", slog.String("error", err.Error()))
		a.loadErr = catalogFailureMessage
	} else {
		a.catalog.Replace(restaurants)
		a.loadErr = ""
	}
	view := a.catalogViewLocked()
	a.mu.Unlock()

	a.refreshMarkers()
	return view
}

// CatalogView renders the current catalog under the active filter.
func (a *App) CatalogView() CatalogView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalogViewLocked()
}

func (a *App) catalogViewLocked() CatalogView {
	return CatalogView{
		Entries: views.BuildList(a.catalog.Apply(a.filter), a.favourites, a.selector.SelectedID()),
		Facets:  a.catalog.Facets(),
		Filter:  a.filter,
		Error:   a.loadErr,
	}
}

// ApplyFilter stores the filter and re-renders the list and the markers
// from the full catalog.
func (a *App) ApplyFilter(filter catalog.Filter) CatalogView {
	a.mu.Lock()
	a.filter = filter
	view := a.catalogViewLocked()
	a.mu.Unlock()

	a.refreshMarkers()
	return view
}

// ToggleFavourite flips the favourite state and returns the refreshed
// list view. Membership changes only with an active session.
func (a *App) ToggleFavourite(ctx context.Context, restaurantID string) CatalogView {
	a.favourites.Toggle(ctx, restaurantID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalogViewLocked()
}

// SelectRestaurant activates the restaurant and fetches its menu for the
// current period.
func (a *App) SelectRestaurant(ctx context.Context, restaurantID string) (menus.View, error) {
	restaurant, ok := a.catalog.ByID(restaurantID)
	if !ok {
		return menus.View{}, &ErrUnknownRestaurant{ID: restaurantID}
	}
	return a.selector.Select(ctx, restaurant), nil
}

// ChangePeriod switches between day and week menus.
func (a *App) ChangePeriod(ctx context.Context, period menus.Period) menus.View {
	return a.selector.ChangePeriod(ctx, period)
}

// Locate finds the restaurant nearest to the given position and
// highlights it on the map. With no located restaurants the view is
// empty.
func (a *App) Locate(lat, lon float64) LocationView {
	nearest, distance, ok := a.catalog.Nearest(lat, lon)
	if !ok {
		return LocationView{}
	}
	marker, ok := views.MarkerFor(nearest)
	if !ok {
		return LocationView{}
	}
	a.mapView.HighlightNearest(marker, distance)
	return LocationView{Nearest: &marker, DistanceMeters: distance}
}

// refreshMarkers re-renders the map pins for the currently filtered set.
func (a *App) refreshMarkers() {
	a.mu.Lock()
	filter := a.filter
	a.mu.Unlock()
	a.mapView.SetMarkers(views.BuildMarkers(a.catalog.Apply(filter)))
}
