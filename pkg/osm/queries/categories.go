package queries

import (
	"fmt"

	"github.com/NERVsystems/osmingest/pkg/geo"
	"github.com/NERVsystems/osmingest/pkg/listing"
)

// KolkataBounds is the default ingestion region
var KolkataBounds = geo.BoundingBox{
	MinLat: 22.45,
	MinLon: 88.25,
	MaxLat: 22.65,
	MaxLon: 88.45,
}

// predicates lists, per category, the tag filters unioned across node, way and relation
var predicates = map[listing.Category][]TagFilter{
	listing.Hotels: {
		Tag("tourism", "hotel", "guest_house", "hostel", "motel"),
	},
	listing.Restaurants: {
		Tag("amenity", "restaurant", "cafe", "fast_food", "food_court"),
	},
	listing.Attractions: {
		Tag("tourism", "attraction", "museum", "gallery", "viewpoint", "zoo"),
		Tag("historic"),
		Tag("amenity", "place_of_worship"),
		Tag("leisure", "park"),
	},
	listing.Sports: {
		Tag("leisure", "stadium", "sports_centre", "pitch", "track", "fitness_centre", "swimming_pool"),
	},
}

// ForCategory returns the Overpass QL for one network category
func ForCategory(category listing.Category, bbox geo.BoundingBox) (string, error) {
	filters, ok := predicates[category]
	if !ok {
		return "", fmt.Errorf("no Overpass query for category %q", category)
	}
	if err := bbox.Validate(); err != nil {
		return "", fmt.Errorf("invalid bounding box: %w", err)
	}

	b := NewOverpassBuilder().WithBoundingBox(bbox)
	for _, f := range filters {
		b.WithAny(f)
	}
	return b.Build(), nil
}
