// Package menus tracks which restaurant and which menu period are active
// and turns fetched menus into renderable views.
package menus

import (
	"fmt"
	"strings"

	"github.com/akorhonen/restaurant-browser/internal/models"
)

// Period selects the menu span.
type Period string

const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

// ParsePeriod validates a period value from user input.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek:
		return Period(s), nil
	default:
		return "", fmt.Errorf("invalid menu period %q (want day or week)", s)
	}
}

// Display strings for the menu panel.
const (
	titleFallback      = "Menu"
	courseNameFallback = "Unnamed dish"
	dateFallback       = "Date unknown"

	loadingMessage   = "Loading menu..."
	emptyDayMessage  = "No menu found for this day."
	emptyWeekMessage = "No weekly menu found."
	emptyDayLine     = "No dishes for this day."
	failureMessage   = "Failed to load the menu. Please try again later."
)

// Section is one block of the menu panel: a week view renders one per
// day, a day view renders a single heading-less section.
type Section struct {
	Heading string   `json:"heading,omitempty"`
	Lines   []string `json:"lines"`
}

// View is the rendered menu panel.
type View struct {
	Title    string    `json:"title"`
	Period   Period    `json:"period"`
	Loading  bool      `json:"loading,omitempty"`
	Error    string    `json:"error,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// FormatCourseLine renders one dish as "{name}{diet-suffix}{price-suffix}".
// The price suffix renders whenever a price is present, including an
// explicit zero for free items.
func FormatCourseLine(c models.Course) string {
	name := c.Name
	if name == "" {
		name = courseNameFallback
	}

	var b strings.Builder
	b.WriteString(name)
	if diets := strings.TrimSpace(string(c.Diets)); diets != "" {
		b.WriteString(" (")
		b.WriteString(diets)
		b.WriteString(")")
	}
	if price := strings.TrimSpace(string(c.Price)); price != "" {
		b.WriteString(" — ")
		b.WriteString(price)
		b.WriteString(" €")
	}
	return b.String()
}

// FormatMenuDate renders "YYYY-MM-DD" as "DD.MM.YYYY". Anything that is
// not that exact shape passes through unchanged; a missing date renders a
// placeholder.
func FormatMenuDate(date string) string {
	if date == "" {
		return dateFallback
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 || !allDigits(parts[0], 4) || !allDigits(parts[1], 2) || !allDigits(parts[2], 2) {
		return date
	}
	return parts[2] + "." + parts[1] + "." + parts[0]
}

func allDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TitleFor returns the menu panel title for a restaurant.
func TitleFor(r models.Restaurant) string {
	if r.Name == "" {
		return titleFallback
	}
	return r.Name
}

// LoadingView is the placeholder shown while a fetch is in flight.
func LoadingView(title string, period Period) View {
	return View{Title: title, Period: period, Loading: true, Sections: []Section{{Lines: []string{loadingMessage}}}}
}

// FailureView is the panel-level message for a failed fetch.
func FailureView(title string, period Period) View {
	return View{Title: title, Period: period, Error: failureMessage}
}

// BuildDailyView renders a day's flat course list, or a placeholder when
// the day has no courses.
func BuildDailyView(title string, menu *models.DailyMenu) View {
	view := View{Title: title, Period: PeriodDay}

	if menu == nil || len(menu.Courses) == 0 {
		view.Sections = []Section{{Lines: []string{emptyDayMessage}}}
		return view
	}

	lines := make([]string, 0, len(menu.Courses))
	for _, course := range menu.Courses {
		lines = append(lines, FormatCourseLine(course))
	}
	view.Sections = []Section{{Lines: lines}}
	return view
}

// BuildWeeklyView renders per-day sections in server order. A day with no
// courses still gets its section, holding a single placeholder line, so
// siblings render unaffected.
func BuildWeeklyView(title string, menu *models.WeeklyMenu) View {
	view := View{Title: title, Period: PeriodWeek}

	if menu == nil || len(menu.Days) == 0 {
		view.Sections = []Section{{Lines: []string{emptyWeekMessage}}}
		return view
	}

	sections := make([]Section, 0, len(menu.Days))
	for _, day := range menu.Days {
		section := Section{Heading: FormatMenuDate(day.Date)}
		if len(day.Courses) == 0 {
			section.Lines = []string{emptyDayLine}
		} else {
			for _, course := range day.Courses {
				section.Lines = append(section.Lines, FormatCourseLine(course))
			}
		}
		sections = append(sections, section)
	}
	view.Sections = sections
	return view
}
