package menus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

// Fetcher retrieves menus from the remote API.
type Fetcher interface {
	DailyMenu(ctx context.Context, restaurantID string) (*models.DailyMenu, error)
	WeeklyMenu(ctx context.Context, restaurantID string) (*models.WeeklyMenu, error)
}

// Selector is the selection state machine: it tracks the active
// restaurant and period and drives the fetch-and-render pipeline.
//
// Requests are never cancelled. Instead every fetch carries a generation
// number; a response is applied only when its generation still matches at
// arrival, so a superseded selection's late response cannot overwrite a
// newer render.
type Selector struct {
	mu      sync.Mutex
	fetcher Fetcher
	logger  *slog.Logger
	render  func(View)

	restaurantID string
	title        string
	period       Period
	generation   uint64
}

// NewSelector starts in the Idle state with the day period active.
func NewSelector(fetcher Fetcher, logger *slog.Logger, render func(View)) *Selector {
	if render == nil {
		render = func(View) {}
	}
	return &Selector{
		fetcher: fetcher,
		logger:  logger,
		render:  render,
		period:  PeriodDay,
	}
}

// SelectedID returns the active restaurant id, empty when idle.
func (s *Selector) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restaurantID
}

// Period returns the active menu period.
func (s *Selector) Period() Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// Select makes the given restaurant active and fetches its menu for the
// current period.
func (s *Selector) Select(ctx context.Context, r models.Restaurant) View {
	s.mu.Lock()
	s.restaurantID = r.ID
	s.title = TitleFor(r)
	id, title, period := s.restaurantID, s.title, s.period
	generation := s.nextGenerationLocked()
	s.mu.Unlock()

	return s.fetchAndRender(ctx, generation, id, title, period)
}

// ChangePeriod records the new period. With a restaurant selected it
// re-runs the fetch pipeline; when idle the change only takes effect once
// a restaurant is chosen.
func (s *Selector) ChangePeriod(ctx context.Context, period Period) View {
	s.mu.Lock()
	s.period = period
	if s.restaurantID == "" {
		s.mu.Unlock()
		return View{Title: titleFallback, Period: period}
	}
	id, title := s.restaurantID, s.title
	generation := s.nextGenerationLocked()
	s.mu.Unlock()

	return s.fetchAndRender(ctx, generation, id, title, period)
}

func (s *Selector) nextGenerationLocked() uint64 {
	s.generation++
	return s.generation
}

// fetchAndRender issues exactly one request for the id+period pair. The
// loading placeholder renders synchronously before the request goes out.
func (s *Selector) fetchAndRender(ctx context.Context, generation uint64, id, title string, period Period) View {
	s.publish(generation, LoadingView(title, period))

	var view View
	if period == PeriodWeek {
		menu, err := s.fetcher.WeeklyMenu(ctx, id)
		if err != nil {
			s.logger.Warn("weekly menu fetch failed",
				slog.String("restaurant_id", id),
				slog.String("error", err.Error()),
			)
			view = FailureView(title, period)
		} else {
			view = BuildWeeklyView(title, menu)
		}
	} else {
		menu, err := s.fetcher.DailyMenu(ctx, id)
		if err != nil {
			s.logger.Warn("daily menu fetch failed",
				slog.String("restaurant_id", id),
				slog.String("error", err.Error()),
			)
			view = FailureView(title, period)
		} else {
			view = BuildDailyView(title, menu)
		}
	}

	s.publish(generation, view)
	return view
}

// publish hands a view to the render sink unless a newer selection has
// superseded this generation.
func (s *Selector) publish(generation uint64, view View) {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale menu render",
			slog.Uint64("generation", generation),
		)
		return
	}
	render := s.render
	s.mu.Unlock()

	render(view)
}
