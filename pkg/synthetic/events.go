// Package synthetic generates the event and promotion listings that have no
// OpenStreetMap source. Output depends only on the reference time and the
// sampler, so a fixed seed reproduces a run.
package synthetic

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NERVsystems/osmingest/pkg/geo"
	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/normalize"
)

const featuredRatio = 0.2

// idNamespace scopes the name-based UUIDs of generated records
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/NERVsystems/osmingest/synthetic"))

type venue struct {
	name string
	area string
	lat  float64
	lon  float64
}

var (
	maidan         = venue{"Brigade Parade Ground", "Maidan", 22.5535, 88.3445}
	nandan         = venue{"Nandan", "Rabindra Sadan", 22.5412, 88.3468}
	centralPark    = venue{"Central Park", "Salt Lake", 22.5868, 88.4077}
	nazrulMancha   = venue{"Nazrul Mancha", "Dhakuria", 22.5113, 88.3660}
	parkStreet     = venue{"Allen Park", "Park Street", 22.5526, 88.3553}
	edenGardens    = venue{"Eden Gardens", "B.B.D. Bagh", 22.5646, 88.3433}
	victoria       = venue{"Victoria Memorial", "Maidan", 22.5448, 88.3426}
	bookFairGround = venue{"Boi Mela Prangan", "Salt Lake", 22.5740, 88.4153}
)

type eventTemplate struct {
	title       string
	description string
	category    string
	venue       venue
	startsIn    int // days after the reference time
	days        int
	minPrice    int
	maxPrice    int
	organizer   string
	tags        []string
}

var eventCatalogue = []eventTemplate{
	{
		title:       "Durga Puja Pandal Hopping",
		description: "Guided evening tour of the city's most celebrated puja pandals.",
		category:    "Festival",
		venue:       maidan,
		startsIn:    14,
		days:        5,
		organizer:   "Kolkata Tourism Board",
		tags:        []string{"festival", "culture", "durga puja"},
	},
	{
		title:       "Kolkata International Film Festival",
		description: "Week-long screening of international and Bengali cinema.",
		category:    "Film",
		venue:       nandan,
		startsIn:    30,
		days:        7,
		minPrice:    100,
		maxPrice:    500,
		organizer:   "West Bengal Film Centre",
		tags:        []string{"film", "cinema"},
	},
	{
		title:       "Dover Lane Music Conference",
		description: "All-night Hindustani classical music concerts.",
		category:    "Music",
		venue:       nazrulMancha,
		startsIn:    45,
		days:        4,
		minPrice:    300,
		maxPrice:    2500,
		organizer:   "Dover Lane Music Conference",
		tags:        []string{"music", "classical"},
	},
	{
		title:       "Kolkata Jazzfest",
		description: "Open-air jazz evenings with Indian and international artists.",
		category:    "Music",
		venue:       centralPark,
		startsIn:    21,
		days:        3,
		minPrice:    500,
		maxPrice:    3000,
		organizer:   "Jazzfest Foundation",
		tags:        []string{"music", "jazz", "outdoor"},
	},
	{
		title:       "Park Street Christmas Carnival",
		description: "Lights, live bands and food stalls along Park Street.",
		category:    "Festival",
		venue:       parkStreet,
		startsIn:    60,
		days:        10,
		organizer:   "Kolkata Municipal Corporation",
		tags:        []string{"festival", "christmas", "food"},
	},
	{
		title:       "T20 Cricket Night",
		description: "Floodlit T20 fixture at the home of Bengal cricket.",
		category:    "Sports",
		venue:       edenGardens,
		startsIn:    10,
		days:        1,
		minPrice:    650,
		maxPrice:    10000,
		organizer:   "Cricket Association of Bengal",
		tags:        []string{"sports", "cricket"},
	},
	{
		title:       "Heritage Walk at Victoria Memorial",
		description: "Morning walk through colonial Kolkata with a historian.",
		category:    "Tour",
		venue:       victoria,
		startsIn:    3,
		days:        1,
		minPrice:    200,
		maxPrice:    200,
		organizer:   "Calcutta Walks",
		tags:        []string{"heritage", "walk", "history"},
	},
	{
		title:       "International Kolkata Book Fair",
		description: "One of the largest book fairs in the world.",
		category:    "Exhibition",
		venue:       bookFairGround,
		startsIn:    90,
		days:        12,
		organizer:   "Publishers and Booksellers Guild",
		tags:        []string{"books", "exhibition", "literature"},
	},
}

// Events builds the upcoming event listings relative to now
func Events(now time.Time, s normalize.Sampler) []listing.Event {
	day := startOfDay(now)
	out := make([]listing.Event, 0, len(eventCatalogue))
	for _, t := range eventCatalogue {
		// Shift each edition by up to a week so repeated runs do not align exactly
		start := day.AddDate(0, 0, t.startsIn+s.IntN(7)).Add(18 * time.Hour)
		end := start.AddDate(0, 0, t.days-1).Add(4 * time.Hour)

		out = append(out, listing.Event{
			ID:          recordID("event", t.title, start),
			Title:       t.title,
			Description: t.description,
			Category:    t.category,
			StartDate:   start,
			EndDate:     end,
			Venue: listing.Venue{
				Name: t.venue.name,
				Address: listing.Address{
					Area: t.venue.area,
					City: normalize.DefaultRegion,
				},
				Location: geo.NewPoint(t.venue.lat, t.venue.lon),
			},
			TicketPrice: listing.TicketPrice{
				Min:      t.minPrice,
				Max:      t.maxPrice,
				Currency: listing.Currency,
				IsFree:   t.maxPrice == 0,
			},
			Organizer: t.organizer,
			Tags:      append([]string(nil), t.tags...),
			Status:    listing.StatusUpcoming,
			Featured:  s.Float64() < featuredRatio,
			Source:    listing.SourceSynthetic,
		})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// recordID derives a stable identifier from the record kind, title and date
func recordID(kind, title string, at time.Time) string {
	name := fmt.Sprintf("%s:%s:%s", kind, title, at.Format(time.DateOnly))
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
