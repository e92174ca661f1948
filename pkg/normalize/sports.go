package normalize

import (
	"fmt"

	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/osm"
)

// Sports facility categories
const (
	SportsStadium    = "Stadium"
	SportsGrounds    = "Sports Grounds"
	SportsCoaching   = "Coaching Centers"
	SportsClubs      = "Sports Clubs"
	SportsFacilities = "Sports Facilities"
)

// FallbackSportsName marks sports facilities without a usable name
const FallbackSportsName = "Unnamed Sports Facility"

var sportsRules = Rules[string]{
	Default: SportsFacilities,
	Rules: []Rule[string]{
		{SportsStadium, TagEquals("leisure", "stadium")},
		{SportsClubs, Any(TagEquals("leisure", "sports_club"), TagEquals("club", "sport"), NameContains("club"))},
		{SportsCoaching, Any(NameContains("academy", "coaching"), TagEquals("coaching", "yes"))},
		{SportsGrounds, TagIn("leisure", "pitch", "track")},
	},
}

// sport assumed from the leisure tag when sport is missing
var leisureSport = map[string]string{
	"swimming_pool":  "Swimming",
	"fitness_centre": "Fitness",
	"track":          "Athletics",
	"stadium":        "Cricket",
	"pitch":          "Football",
}

var sportsFacilities = []flag{
	{"lit", "Floodlights"},
	{"changing_rooms", "Changing Rooms"},
	{"shower", "Showers"},
	{"toilets", "Toilets"},
	{"drinking_water", "Drinking Water"},
	{"parking", "Parking"},
	{"covered", "Covered"},
	{"wheelchair", "Wheelchair Accessible"},
}

// SportsCategory classifies a sports element
func SportsCategory(e osm.Element) string {
	return sportsRules.Resolve(e)
}

// SportsList returns the humanized values of the sport tag, or a guess from leisure
func SportsList(e osm.Element) []string {
	values := splitValues(e.Tag("sport"))
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
		s, ok := leisureSport[e.Tag("leisure")]
		if !ok {
			s = "Multi Sport"
		}
		out = append(out, s)
	}
	return out
}

// Sports normalizes sports facility elements
func Sports(elements []osm.Element, opts Options) []listing.SportsFacility {
	opts = opts.WithDefaults()
	return normalizeEach(elements, FallbackSportsName, func(e osm.Element, name string) listing.SportsFacility {
		category := SportsCategory(e)
		profile := sportsProfileFor(category)
		sports := SportsList(e)
		addr := BuildAddress(e, opts.Region)

		capacity, ok := parsePositiveInt(e.Tag("capacity"))
		if !ok {
			capacity = profile.capacity
		}

		return listing.SportsFacility{
			Base: listing.Base{
				Name:        name,
				Description: describe(e, fmt.Sprintf("%s for %s in %s", category, sports[0], placeIn(addr))),
				Category:    category,
				Location:    location(e),
				Address:     addr,
				Contact:     BuildContact(e),
			},
			Sport:      sports[0],
			Sports:     sports,
			Capacity:   capacity,
			Facilities: collectFlags(e, sportsFacilities),
			Coaching:   category == SportsCoaching || TagEquals("coaching", "yes")(e),
			Surface:    humanize(e.Tag("surface")),
			Fees:       profile.fees,
			Timings:    opts.Hours.Parse(e.Tag("opening_hours")),
			Meta:       buildMeta(e, opts.Sampler, CollectTags(e, category)),
		}
	})
}
