package normalize

import "github.com/NERVsystems/osmingest/pkg/listing"

// The tables below are illustrative placeholders, not market data.

type hotelProfile struct {
	minPrice  int
	maxPrice  int
	stars     int
	roomTypes []string
}

var hotelProfiles = map[string]hotelProfile{
	HotelLuxury:   {minPrice: 8000, maxPrice: 25000, stars: 5, roomTypes: []string{"Deluxe", "Premium", "Suite"}},
	HotelBusiness: {minPrice: 4000, maxPrice: 9000, stars: 4, roomTypes: []string{"Standard", "Deluxe", "Executive"}},
	HotelBudget:   {minPrice: 1000, maxPrice: 3000, stars: 2, roomTypes: []string{"Standard", "Deluxe"}},
	HotelHeritage: {minPrice: 5000, maxPrice: 15000, stars: 4, roomTypes: []string{"Heritage Room", "Suite"}},
	HotelResort:   {minPrice: 6000, maxPrice: 18000, stars: 4, roomTypes: []string{"Garden View", "Pool View", "Villa"}},
	HotelBoutique: {minPrice: 3500, maxPrice: 8000, stars: 3, roomTypes: []string{"Standard", "Designer"}},
}

func hotelProfileFor(category string) hotelProfile {
	if p, ok := hotelProfiles[category]; ok {
		return p
	}
	return hotelProfiles[hotelRules.Default]
}

// roomTypesFor spreads the price range evenly over the category's room classes
func roomTypesFor(p hotelProfile) []listing.RoomType {
	n := len(p.roomTypes)
	out := make([]listing.RoomType, 0, n)
	for i, name := range p.roomTypes {
		price := p.minPrice
		if n > 1 {
			price = p.minPrice + (p.maxPrice-p.minPrice)*i/(n-1)
		}
		capacity := 2
		if i == n-1 && n > 2 {
			capacity = 4
		}
		out = append(out, listing.RoomType{Type: name, Price: price, Capacity: capacity, Available: true})
	}
	return out
}

var mealPrices = map[string]listing.MealPrice{
	"restaurant": {Min: 300, Max: 1500, Avg: 800},
	"cafe":       {Min: 150, Max: 600, Avg: 350},
	"fast_food":  {Min: 100, Max: 400, Avg: 250},
	"food_court": {Min: 150, Max: 700, Avg: 400},
	"bar":        {Min: 500, Max: 2000, Avg: 1200},
	"pub":        {Min: 500, Max: 2000, Avg: 1200},
	"ice_cream":  {Min: 80, Max: 300, Avg: 150},
}

// mealPriceFor falls back to restaurant pricing for unknown types
func mealPriceFor(kind string) listing.MealPrice {
	p, ok := mealPrices[kind]
	if !ok {
		p = mealPrices["restaurant"]
	}
	p.Currency = listing.Currency
	return p
}

type attractionProfile struct {
	fee      listing.EntryFee
	duration string
	guided   bool
}

var attractionProfiles = map[string]attractionProfile{
	AttractionHistorical:   {fee: listing.EntryFee{Adult: 50, Child: 25, Senior: 25}, duration: "1-2 hours", guided: true},
	AttractionReligious:    {fee: listing.EntryFee{IsFree: true}, duration: "30-60 minutes"},
	AttractionMuseums:      {fee: listing.EntryFee{Adult: 50, Child: 20, Senior: 20}, duration: "2-3 hours", guided: true},
	AttractionParks:        {fee: listing.EntryFee{Adult: 20, Child: 10, Senior: 10}, duration: "1-2 hours"},
	AttractionArchitecture: {fee: listing.EntryFee{Adult: 30, Child: 15, Senior: 15}, duration: "30-60 minutes", guided: true},
	AttractionCultural:     {fee: listing.EntryFee{Adult: 100, Child: 50, Senior: 50}, duration: "1-2 hours"},
}

func attractionProfileFor(category string) attractionProfile {
	p, ok := attractionProfiles[category]
	if !ok {
		p = attractionProfiles[attractionRules.Default]
	}
	p.fee.Currency = listing.Currency
	return p
}

type sportsProfile struct {
	fees     listing.Fees
	capacity int
}

var sportsProfiles = map[string]sportsProfile{
	SportsStadium:    {fees: listing.Fees{Hourly: 2000, Monthly: 30000}, capacity: 20000},
	SportsGrounds:    {fees: listing.Fees{Hourly: 500, Monthly: 3000}, capacity: 500},
	SportsCoaching:   {fees: listing.Fees{Hourly: 300, Monthly: 2500}, capacity: 100},
	SportsClubs:      {fees: listing.Fees{Hourly: 400, Monthly: 4000}, capacity: 300},
	SportsFacilities: {fees: listing.Fees{Hourly: 300, Monthly: 2000}, capacity: 150},
}

func sportsProfileFor(category string) sportsProfile {
	p, ok := sportsProfiles[category]
	if !ok {
		p = sportsProfiles[sportsRules.Default]
	}
	p.fees.Currency = listing.Currency
	return p
}
