package normalize

import (
	"fmt"

	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/osm"
)

// Hotel categories
const (
	HotelLuxury   = "Luxury"
	HotelBusiness = "Business"
	HotelBudget   = "Budget"
	HotelHeritage = "Heritage"
	HotelResort   = "Resort"
	HotelBoutique = "Boutique"
)

// FallbackHotelName marks hotels without a usable name
const FallbackHotelName = "Unnamed Hotel"

var hotelRules = Rules[string]{
	Default: HotelBusiness,
	Rules: []Rule[string]{
		{HotelLuxury, StarsAtLeast(5)},
		{HotelBusiness, StarsBetween(4, 4)},
		{HotelBudget, TagIn("tourism", "hostel", "guest_house", "motel")},
		{HotelHeritage, Any(NameContains("heritage"), HasTag("heritage"))},
		{HotelResort, Any(NameContains("resort"), TagEquals("tourism", "resort"))},
		{HotelBoutique, NameContains("boutique")},
		{HotelBudget, StarsBetween(1, 3)},
	},
}

var hotelAmenities = []flag{
	{"internet_access", "WiFi"},
	{"wifi", "WiFi"},
	{"parking", "Parking"},
	{"swimming_pool", "Swimming Pool"},
	{"restaurant", "Restaurant"},
	{"bar", "Bar"},
	{"air_conditioning", "Air Conditioning"},
	{"fitness_centre", "Gym"},
	{"gym", "Gym"},
	{"spa", "Spa"},
	{"room_service", "Room Service"},
	{"breakfast", "Breakfast"},
	{"wheelchair", "Wheelchair Accessible"},
}

// HotelCategory classifies a hotel element
func HotelCategory(e osm.Element) string {
	return hotelRules.Resolve(e)
}

// Hotels normalizes accommodation elements
func Hotels(elements []osm.Element, opts Options) []listing.Hotel {
	opts = opts.WithDefaults()
	return normalizeEach(elements, FallbackHotelName, func(e osm.Element, name string) listing.Hotel {
		category := HotelCategory(e)
		profile := hotelProfileFor(category)

		stars, ok := parseStars(e.Tag("stars"))
		if !ok {
			stars = profile.stars
		}

		addr := BuildAddress(e, opts.Region)
		images := make([]string, 0)
		if img := firstTag(e, "image"); img != "" {
			images = append(images, img)
		}

		return listing.Hotel{
			Base: listing.Base{
				Name:        name,
				Description: describe(e, fmt.Sprintf("%s hotel in %s", category, placeIn(addr))),
				Category:    category,
				Location:    location(e),
				Address:     addr,
				Contact:     BuildContact(e),
			},
			StarRating: stars,
			PriceRange: listing.PriceRange{
				Min:      profile.minPrice,
				Max:      profile.maxPrice,
				Currency: listing.Currency,
			},
			Amenities:    collectFlags(e, hotelAmenities),
			RoomTypes:    roomTypesFor(profile),
			CheckInTime:  "14:00",
			CheckOutTime: "12:00",
			Images:       images,
			Meta:         buildMeta(e, opts.Sampler, CollectTags(e, category)),
		}
	})
}
