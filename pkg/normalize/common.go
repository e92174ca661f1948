package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NERVsystems/osmingest/pkg/geo"
	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/osm"
)

// DefaultRegion is the city written into every address
const DefaultRegion = "Kolkata"

// Options carries the collaborators shared by all normalizers
type Options struct {
	// Sampler draws the placeholder rating, featured and promoted fields
	Sampler Sampler

	// Hours parses opening_hours tags
	Hours OpeningHoursParser

	// Region is the fixed city of the ingestion area
	Region string
}

// DefaultOptions returns options with a time-seeded sampler
func DefaultOptions() Options {
	return Options{
		Sampler: NewTimeSampler(),
		Hours:   DefaultHours,
		Region:  DefaultRegion,
	}
}

// WithDefaults fills unset fields with the production defaults
func (o Options) WithDefaults() Options {
	if o.Sampler == nil {
		o.Sampler = NewTimeSampler()
	}
	if o.Hours == nil {
		o.Hours = DefaultHours
	}
	if o.Region == "" {
		o.Region = DefaultRegion
	}
	return o
}

// Eligible reports whether an element can be normalized: it needs its own
// coordinates and at least one tag.
func Eligible(e osm.Element) bool {
	return e.HasCoordinates() && len(e.Tags) > 0
}

// CountEligible counts the elements Eligible accepts
func CountEligible(elements []osm.Element) int {
	n := 0
	for _, e := range elements {
		if Eligible(e) {
			n++
		}
	}
	return n
}

// normalizeEach applies build to every eligible, named element.
// Elements whose name resolves to fallback are dropped.
func normalizeEach[T any](elements []osm.Element, fallback string, build func(e osm.Element, name string) T) []T {
	out := make([]T, 0, len(elements))
	for _, e := range elements {
		if !Eligible(e) {
			continue
		}
		name := nameOf(e, fallback)
		if name == fallback {
			continue
		}
		out = append(out, build(e, name))
	}
	return out
}

func nameOf(e osm.Element, fallback string) string {
	if name := strings.TrimSpace(e.Tag("name")); name != "" {
		return name
	}
	return fallback
}

func location(e osm.Element) geo.Point {
	return geo.NewPoint(*e.Lat, *e.Lon)
}

// BuildAddress maps addr:* tags onto an address in the given city
func BuildAddress(e osm.Element, city string) listing.Address {
	street := strings.TrimSpace(e.Tag("addr:street"))
	if number := strings.TrimSpace(e.Tag("addr:housenumber")); number != "" && street != "" {
		street = number + " " + street
	}
	return listing.Address{
		Street:   street,
		Area:     strings.TrimSpace(e.Tag("addr:suburb")),
		City:     city,
		State:    strings.TrimSpace(e.Tag("addr:state")),
		Pincode:  strings.TrimSpace(e.Tag("addr:postcode")),
		Landmark: strings.TrimSpace(e.Tag("addr:place")),
	}
}

// BuildContact collects phone numbers, email and website
func BuildContact(e osm.Element) listing.Contact {
	phones := make([]string, 0)
	seen := make(map[string]bool)
	for _, key := range []string{"phone", "contact:phone"} {
		for _, p := range strings.Split(e.Tag(key), ";") {
			p = strings.TrimSpace(p)
			if p != "" && !seen[p] {
				seen[p] = true
				phones = append(phones, p)
			}
		}
	}
	return listing.Contact{
		Phone:       phones,
		Email:       firstTag(e, "email", "contact:email"),
		Website:     firstTag(e, "website", "contact:website"),
		SocialMedia: map[string]string{},
	}
}

func firstTag(e osm.Element, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(e.Tag(k)); v != "" {
			return v
		}
	}
	return ""
}

// flag maps a tag key to the label it contributes when set to "yes"
type flag struct {
	key   string
	label string
}

// collectFlags returns, in table order, the labels whose tag equals "yes"
func collectFlags(e osm.Element, table []flag) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, f := range table {
		if strings.EqualFold(strings.TrimSpace(e.Tag(f.key)), "yes") && !seen[f.label] {
			seen[f.label] = true
			out = append(out, f.label)
		}
	}
	return out
}

// CollectTags builds the free-text search tags of a record
func CollectTags(e osm.Element, label string) []string {
	var candidates []string
	candidates = append(candidates, e.Tag("addr:suburb"), e.Tag("addr:district"))
	if h := strings.TrimSpace(e.Tag("heritage")); h != "" && !strings.EqualFold(h, "no") {
		candidates = append(candidates, "heritage")
	}
	candidates = append(candidates, e.Tag("tourism"), e.Tag("amenity"), label)

	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool)
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func buildMeta(e osm.Element, s Sampler, tags []string) listing.Meta {
	return listing.Meta{
		Rating:   sampleRating(s),
		Tags:     tags,
		Status:   listing.StatusActive,
		Featured: sampleFeatured(s),
		Promoted: samplePromoted(s),
		OSMID:    e.ID,
		OSMType:  e.Type,
		Source:   listing.SourceOSM,
	}
}

// humanize turns an OSM value such as "south_indian" into "South Indian"
func humanize(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
	if value == "" {
		return ""
	}
	return cases.Title(language.English).String(value)
}

// splitValues splits a multi-valued tag on ";" and ","
func splitValues(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// placeIn renders "area, city" or just the city
func placeIn(addr listing.Address) string {
	if addr.Area != "" {
		return addr.Area + ", " + addr.City
	}
	return addr.City
}

func describe(e osm.Element, fallback string) string {
	if d := strings.TrimSpace(e.Tag("description")); d != "" {
		return d
	}
	return fallback
}
