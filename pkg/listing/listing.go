// Package listing defines the normalized records emitted by the ingestion
// pipeline, one shape per category.
package listing

import (
	"github.com/NERVsystems/osmingest/pkg/geo"
)

// Category names one output stream of the pipeline
type Category string

// Categories in the order the pipeline processes them
const (
	Hotels      Category = "hotels"
	Restaurants Category = "restaurants"
	Attractions Category = "attractions"
	Sports      Category = "sports"
	Events      Category = "events"
	Promotions  Category = "promotions"
)

// All returns every category in processing order
func All() []Category {
	return []Category{Hotels, Restaurants, Attractions, Sports, Events, Promotions}
}

// Network reports whether the category is fetched from Overpass
func (c Category) Network() bool {
	switch c {
	case Hotels, Restaurants, Attractions, Sports:
		return true
	}
	return false
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range All() {
		if c == known {
			return true
		}
	}
	return false
}

// FileName is the output file for the category
func (c Category) FileName() string {
	return string(c) + ".json"
}

// Source values
const (
	SourceOSM       = "OpenStreetMap"
	SourceSynthetic = "Synthetic"
)

// Status values
const (
	StatusActive   = "active"
	StatusUpcoming = "upcoming"
)

// Currency used by every price table
const Currency = "INR"

// Record is implemented by every normalized record
type Record interface {
	// RecordID is the stable identifier of the record within its category
	RecordID() string
	// DisplayName is the human readable name or title
	DisplayName() string
}

// Records converts a typed slice to a slice of Record
func Records[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Address is the postal address of a listing
type Address struct {
	Street   string `json:"street"`
	Area     string `json:"area"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark"`
}

// Contact holds the public contact details of a listing
type Contact struct {
	Phone       []string          `json:"phone"`
	Email       string            `json:"email"`
	Website     string            `json:"website"`
	SocialMedia map[string]string `json:"socialMedia"`
}

// Rating is a placeholder review aggregate
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// DayHours is the opening window of one weekday
type DayHours struct {
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"isClosed"`
}

// OpeningHours maps lower-case weekday names to their window
type OpeningHours map[string]DayHours

// Base holds the fields shared by every OSM-derived record
type Base struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    geo.Point `json:"location"`
	Address     Address   `json:"address"`
	Contact     Contact   `json:"contact"`
}

// Meta holds the trailing fields shared by every OSM-derived record
type Meta struct {
	Rating   Rating   `json:"rating"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
	Featured bool     `json:"featured"`
	Promoted bool     `json:"promoted"`
	OSMID    int64    `json:"osmId"`
	OSMType  string   `json:"osmType,omitempty"`
	Source   string   `json:"source"`
}

// PriceRange is a per-night hotel tariff
type PriceRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// Hotel is a normalized accommodation listing
type Hotel struct {
	Base
	StarRating   int        `json:"starRating"`
	PriceRange   PriceRange `json:"priceRange"`
	Amenities    []string   `json:"amenities"`
	RoomTypes    []RoomType `json:"roomTypes"`
	CheckInTime  string     `json:"checkInTime"`
	CheckOutTime string     `json:"checkOutTime"`
	Images       []string   `json:"images"`
	Meta
}

// RoomType is one bookable room class
type RoomType struct {
	Type      string `json:"type"`
	Price     int    `json:"price"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}

// MealPrice is the typical spend per person at a restaurant
type MealPrice struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Avg      int    `json:"avg"`
	Currency string `json:"currency"`
}

// Restaurant is a normalized food and drink listing
type Restaurant struct {
	Base
	Cuisine          []string     `json:"cuisine"`
	PriceRange       MealPrice    `json:"priceRange"`
	Features         []string     `json:"features"`
	Menu             []string     `json:"menu"`
	DeliveryPartners []string     `json:"deliveryPartners"`
	IsVeg            bool         `json:"isVeg"`
	OpeningHours     OpeningHours `json:"openingHours"`
	Meta
}

// EntryFee is the ticket price of an attraction
type EntryFee struct {
	Adult    int    `json:"adult"`
	Child    int    `json:"child"`
	Senior   int    `json:"senior"`
	Currency string `json:"currency"`
	IsFree   bool   `json:"isFree"`
}

// Attraction is a normalized sightseeing listing
type Attraction struct {
	Base
	EntryFee          EntryFee     `json:"entryFee"`
	Timings           OpeningHours `json:"timings"`
	GuidedTours       bool         `json:"guidedTours"`
	Accessibility     []string     `json:"accessibility"`
	EstimatedDuration string       `json:"estimatedDuration"`
	Meta
}

// Fees is the usage price of a sports facility
type Fees struct {
	Hourly   int    `json:"hourly"`
	Monthly  int    `json:"monthly"`
	Currency string `json:"currency"`
}

// SportsFacility is a normalized sports venue listing
type SportsFacility struct {
	Base
	Sport      string       `json:"sport"`
	Sports     []string     `json:"sports"`
	Capacity   int          `json:"capacity"`
	Facilities []string     `json:"facilities"`
	Coaching   bool         `json:"coaching"`
	Surface    string       `json:"surface"`
	Fees       Fees         `json:"fees"`
	Timings    OpeningHours `json:"timings"`
	Meta
}

// RecordID implements Record
func (h Hotel) RecordID() string { return osmID(h.OSMType, h.OSMID) }

// DisplayName implements Record
func (h Hotel) DisplayName() string { return h.Name }

// RecordID implements Record
func (r Restaurant) RecordID() string { return osmID(r.OSMType, r.OSMID) }

// DisplayName implements Record
func (r Restaurant) DisplayName() string { return r.Name }

// RecordID implements Record
func (a Attraction) RecordID() string { return osmID(a.OSMType, a.OSMID) }

// DisplayName implements Record
func (a Attraction) DisplayName() string { return a.Name }

// RecordID implements Record
func (s SportsFacility) RecordID() string { return osmID(s.OSMType, s.OSMID) }

// DisplayName implements Record
func (s SportsFacility) DisplayName() string { return s.Name }
