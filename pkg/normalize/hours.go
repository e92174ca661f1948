package normalize

import "github.com/NERVsystems/osmingest/pkg/listing"

// Weekdays in display order
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// OpeningHoursParser turns an opening_hours tag into a weekly schedule
type OpeningHoursParser interface {
	Parse(raw string) listing.OpeningHours
}

// StaticHours ignores the tag and returns the same window every day.
// A real opening_hours grammar can replace it through Options.Hours.
type StaticHours struct {
	Open  string
	Close string
}

// DefaultHours is 09:00 to 21:00, seven days a week
var DefaultHours = StaticHours{Open: "09:00", Close: "21:00"}

// Parse implements OpeningHoursParser
func (h StaticHours) Parse(string) listing.OpeningHours {
	opens, closes := h.Open, h.Close
	if opens == "" {
		opens = DefaultHours.Open
	}
	if closes == "" {
		closes = DefaultHours.Close
	}

	hours := make(listing.OpeningHours, len(Weekdays))
	for _, day := range Weekdays {
		hours[day] = listing.DayHours{Open: opens, Close: closes}
	}
	return hours
}
