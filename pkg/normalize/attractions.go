package normalize

import (
	"fmt"

	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/osm"
)

// Attraction categories
const (
	AttractionHistorical   = "Historical"
	AttractionReligious    = "Religious"
	AttractionMuseums      = "Museums"
	AttractionParks        = "Parks"
	AttractionArchitecture = "Architecture"
	AttractionCultural     = "Cultural"
)

// FallbackAttractionName marks attractions without a usable name
const FallbackAttractionName = "Unnamed Attraction"

var attractionRules = Rules[string]{
	Default: AttractionCultural,
	Rules: []Rule[string]{
		{AttractionReligious, Any(TagEquals("amenity", "place_of_worship"), HasTag("religion"))},
		{AttractionMuseums, TagEquals("tourism", "museum")},
		{AttractionParks, Any(TagIn("leisure", "park", "garden"), TagEquals("tourism", "zoo"))},
		{AttractionArchitecture, Any(TagIn("man_made", "bridge", "tower"), HasTag("architect"), TagEquals("tourism", "artwork"))},
		{AttractionHistorical, HasTag("historic")},
		{AttractionCultural, Any(TagEquals("tourism", "gallery"), TagIn("amenity", "theatre", "arts_centre"))},
	},
}

var attractionAccessibility = []flag{
	{"wheelchair", "Wheelchair Accessible"},
	{"toilets:wheelchair", "Accessible Toilets"},
	{"parking", "Parking"},
	{"toilets", "Toilets"},
}

// AttractionCategory classifies an attraction element
func AttractionCategory(e osm.Element) string {
	return attractionRules.Resolve(e)
}

// Attractions normalizes sightseeing elements
func Attractions(elements []osm.Element, opts Options) []listing.Attraction {
	opts = opts.WithDefaults()
	return normalizeEach(elements, FallbackAttractionName, func(e osm.Element, name string) listing.Attraction {
		category := AttractionCategory(e)
		profile := attractionProfileFor(category)
		addr := BuildAddress(e, opts.Region)

		fee := profile.fee
		if TagEquals("fee", "no")(e) {
			fee = listing.EntryFee{Currency: listing.Currency, IsFree: true}
		}
		if fee.Adult == 0 && fee.Child == 0 && fee.Senior == 0 {
			fee.IsFree = true
		}

		return listing.Attraction{
			Base: listing.Base{
				Name:        name,
				Description: describe(e, fmt.Sprintf("%s attraction in %s", category, placeIn(addr))),
				Category:    category,
				Location:    location(e),
				Address:     addr,
				Contact:     BuildContact(e),
			},
			EntryFee:          fee,
			Timings:           opts.Hours.Parse(e.Tag("opening_hours")),
			GuidedTours:       profile.guided,
			Accessibility:     collectFlags(e, attractionAccessibility),
			EstimatedDuration: profile.duration,
			Meta:              buildMeta(e, opts.Sampler, CollectTags(e, category)),
		}
	})
}
