package normalize

import (
	"fmt"
	"strings"

	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/osm"
)

// FallbackRestaurantName marks restaurants without a usable name
const FallbackRestaurantName = "Unnamed Restaurant"

var restaurantKinds = Rules[string]{
	Default: "restaurant",
	Rules: []Rule[string]{
		{"restaurant", TagEquals("amenity", "restaurant")},
		{"cafe", TagEquals("amenity", "cafe")},
		{"fast_food", TagEquals("amenity", "fast_food")},
		{"food_court", TagEquals("amenity", "food_court")},
		{"bar", TagEquals("amenity", "bar")},
		{"pub", TagEquals("amenity", "pub")},
		{"ice_cream", TagEquals("amenity", "ice_cream")},
	},
}

var defaultCuisine = map[string]string{
	"restaurant": "Indian",
	"cafe":       "Cafe",
	"fast_food":  "Fast Food",
	"food_court": "Multi Cuisine",
	"bar":        "Continental",
	"pub":        "Continental",
	"ice_cream":  "Desserts",
}

var restaurantFeatures = []flag{
	{"outdoor_seating", "Outdoor Seating"},
	{"indoor_seating", "Indoor Seating"},
	{"takeaway", "Takeaway"},
	{"delivery", "Home Delivery"},
	{"drive_through", "Drive Through"},
	{"internet_access", "WiFi"},
	{"air_conditioning", "Air Conditioning"},
	{"reservation", "Reservations"},
	{"parking", "Parking"},
	{"wheelchair", "Wheelchair Accessible"},
}

// RestaurantKind returns the amenity subtype that drives pricing
func RestaurantKind(e osm.Element) string {
	return restaurantKinds.Resolve(e)
}

// Cuisines splits and title-cases the cuisine tag
func Cuisines(e osm.Element, kind string) []string {
	values := splitValues(e.Tag("cuisine"))
	out := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, v := range values {
		h := humanize(v)
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		d, ok := defaultCuisine[kind]
		if !ok {
			d = defaultCuisine["restaurant"]
		}
		out = append(out, d)
	}
	return out
}

func isVegetarian(e osm.Element) bool {
	return TagEquals("diet:vegetarian", "only")(e) || TagEquals("diet:vegan", "only")(e)
}

// Restaurants normalizes food and drink elements
func Restaurants(elements []osm.Element, opts Options) []listing.Restaurant {
	opts = opts.WithDefaults()
	return normalizeEach(elements, FallbackRestaurantName, func(e osm.Element, name string) listing.Restaurant {
		kind := RestaurantKind(e)
		label := humanize(kind)
		cuisine := Cuisines(e, kind)
		addr := BuildAddress(e, opts.Region)

		return listing.Restaurant{
			Base: listing.Base{
				Name:        name,
				Description: describe(e, fmt.Sprintf("%s serving %s in %s", label, strings.Join(cuisine, ", "), placeIn(addr))),
				Category:    label,
				Location:    location(e),
				Address:     addr,
				Contact:     BuildContact(e),
			},
			Cuisine:          cuisine,
			PriceRange:       mealPriceFor(kind),
			Features:         collectFlags(e, restaurantFeatures),
			Menu:             make([]string, 0),
			DeliveryPartners: make([]string, 0),
			IsVeg:            isVegetarian(e),
			OpeningHours:     opts.Hours.Parse(e.Tag("opening_hours")),
			Meta:             buildMeta(e, opts.Sampler, CollectTags(e, label)),
		}
	})
}
