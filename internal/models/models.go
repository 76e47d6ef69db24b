// Wire types for the remote restaurant/user API.

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// User is the remote API's user representation, cached locally after
// login and after every profile update. FavouriteRestaurant is the
// legacy single-favourite slot owned by the server.
type User struct {
	ID                  string `json:"_id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	Avatar              string `json:"avatar,omitempty"`
	FavouriteRestaurant string `json:"favouriteRestaurant,omitempty"`
}

// Location is a GeoJSON point. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Restaurant is an immutable catalog entry. The full set is replaced
// wholesale on every catalog fetch.
type Restaurant struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	City     string    `json:"city,omitempty"`
	Company  string    `json:"company,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Coordinates returns the restaurant position as (latitude, longitude).
// ok is false when the entry carries no usable coordinate pair; such
// restaurants are excluded from marker placement and distance math.
func (r *Restaurant) Coordinates() (lat, lon float64, ok bool) {
	if r.Location == nil || len(r.Location.Coordinates) < 2 {
		return 0, 0, false
	}
	return r.Location.Coordinates[1], r.Location.Coordinates[0], true
}

// FlexString decodes a JSON string or number into a string. The menu
// endpoints serve prices as either form depending on the restaurant.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("expected string or number, got %s", string(data))
}

// DietList decodes the diets field, which arrives as a single string
// ("G, L") or as an array of tags, and normalises to a joined string.
type DietList string

func (d *DietList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = DietList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*d = DietList(strings.Join(list, ", "))
		return nil
	}
	return fmt.Errorf("expected string or array, got %s", string(data))
}

// Course is a single dish on a menu.
type Course struct {
	Name  string     `json:"name"`
	Price FlexString `json:"price,omitempty"`
	Diets DietList   `json:"diets,omitempty"`
}

// DailyMenu is one day's list of courses.
type DailyMenu struct {
	Courses []Course `json:"courses"`
}

// MenuDay is one dated entry of a weekly menu.
type MenuDay struct {
	Date    string   `json:"date"`
	Courses []Course `json:"courses"`
}

// WeeklyMenu is a week's ordered sequence of days, in server order.
type WeeklyMenu struct {
	Days []MenuDay `json:"days"`
}
