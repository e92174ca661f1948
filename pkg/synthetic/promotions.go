package synthetic

import (
	"time"

	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/normalize"
)

type promotionTemplate struct {
	title        string
	description  string
	discountType string
	value        int
	code         string
	applicableTo listing.Category
	validDays    int
	terms        []string
}

var promotionCatalogue = []promotionTemplate{
	{
		title:        "Festive Season Stay",
		description:  "Save on hotel stays booked for the puja holidays.",
		discountType: listing.DiscountPercentage,
		value:        20,
		code:         "FESTIVE20",
		applicableTo: listing.Hotels,
		validDays:    45,
		terms:        []string{"Minimum two-night stay", "Subject to availability"},
	},
	{
		title:        "Weekend Feast",
		description:  "Flat discount on dine-in bills over the weekend.",
		discountType: listing.DiscountFlat,
		value:        200,
		code:         "FEAST200",
		applicableTo: listing.Restaurants,
		validDays:    30,
		terms:        []string{"Valid Saturday and Sunday only", "Minimum bill of INR 1000"},
	},
	{
		title:        "Heritage Pass",
		description:  "Reduced entry across participating museums and monuments.",
		discountType: listing.DiscountPercentage,
		value:        15,
		code:         "HERITAGE15",
		applicableTo: listing.Attractions,
		validDays:    60,
		terms:        []string{"Valid ID required", "Not valid on public holidays"},
	},
	{
		title:        "First Month Fitness",
		description:  "Discount on the first monthly membership at partner facilities.",
		discountType: listing.DiscountPercentage,
		value:        25,
		code:         "FITSTART25",
		applicableTo: listing.Sports,
		validDays:    30,
		terms:        []string{"New members only"},
	},
	{
		title:        "Early Bird Tickets",
		description:  "Flat discount on event tickets booked early.",
		discountType: listing.DiscountFlat,
		value:        100,
		code:         "EARLY100",
		applicableTo: listing.Events,
		validDays:    14,
		terms:        []string{"One code per booking", "Non-refundable"},
	},
}

// Promotions builds the active promotion listings relative to now
func Promotions(now time.Time, s normalize.Sampler) []listing.Promotion {
	from := startOfDay(now)
	out := make([]listing.Promotion, 0, len(promotionCatalogue))
	for _, t := range promotionCatalogue {
		out = append(out, listing.Promotion{
			ID:            recordID("promotion", t.code, from),
			Title:         t.title,
			Description:   t.description,
			DiscountType:  t.discountType,
			DiscountValue: t.value,
			Code:          t.code,
			ApplicableTo:  t.applicableTo,
			ValidFrom:     from,
			ValidUntil:    from.AddDate(0, 0, t.validDays).Add(-time.Second),
			Terms:         append([]string(nil), t.terms...),
			Status:        listing.StatusActive,
			Featured:      s.Float64() < featuredRatio,
			Source:        listing.SourceSynthetic,
		})
	}
	return out
}
