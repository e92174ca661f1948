package normalize

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/NERVsystems/osmingest/pkg/listing"
)

// Sampler is the random source for placeholder fields.
// *rand.Rand from math/rand/v2 satisfies it.
type Sampler interface {
	Float64() float64
	IntN(n int) int
}

// NewSampler returns a PCG-backed sampler. Equal seeds give equal sequences.
func NewSampler(seed uint64) Sampler {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSampler seeds a sampler from the wall clock
func NewTimeSampler() Sampler {
	return NewSampler(uint64(time.Now().UnixNano()))
}

// Placeholder ranges
const (
	minRating     = 3.5
	maxRating     = 5.0
	minReviews    = 10
	maxReviews    = 500
	featuredRatio = 0.2
	promotedRatio = 0.1
)

// sampleRating returns an average in [3.5, 5.0] rounded to one decimal and a count in [10, 500]
func sampleRating(s Sampler) listing.Rating {
	avg := minRating + s.Float64()*(maxRating-minRating)
	return listing.Rating{
		Average: math.Round(avg*10) / 10,
		Count:   minReviews + s.IntN(maxReviews-minReviews+1),
	}
}

func sampleFeatured(s Sampler) bool {
	return s.Float64() < featuredRatio
}

func samplePromoted(s Sampler) bool {
	return s.Float64() < promotedRatio
}
