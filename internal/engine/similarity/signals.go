// Package similarity computes per-field similarity signals between two
// listings. Every signal is in [0,1] and reports ok=false when its input is
// missing on either side, which marks it uninformative rather than a
// mismatch.
package similarity

import (
	"math"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/engine/normalize"
	"github.com/a-deal/gym-finder/internal/model"
)

// Signal names.
const (
	SignalName        = "name"
	SignalAddress     = "address"
	SignalPhone       = "phone"
	SignalCoordinates = "coordinates"
	SignalWebsite     = "website"
	SignalHours       = "hours"
	SignalCategory    = "category"
	SignalPrice       = "price"
)

// Signals lists every signal in evaluation order.
var Signals = []string{
	SignalName,
	SignalAddress,
	SignalPhone,
	SignalCoordinates,
	SignalWebsite,
	SignalHours,
	SignalCategory,
	SignalPrice,
}

// Side is one listing of a compared pair together with its normalized form.
type Side struct {
	Listing *model.Listing
	Norm    model.NormalizedListing
}

// NewSide normalizes l through the region's cache.
func NewSide(l *model.Listing, c *normalize.Cache) Side {
	return Side{Listing: l, Norm: c.Listing(l)}
}

// Engine computes signals for listing pairs. It holds read-only settings and
// is safe for concurrent use.
type Engine struct {
	maxDistanceMiles float64
}

// New returns an engine whose coordinate signal decays to zero at
// maxDistanceMiles.
func New(maxDistanceMiles float64) *Engine {
	return &Engine{maxDistanceMiles: maxDistanceMiles}
}

// MaxDistanceMiles returns the distance at which proximity reaches zero.
func (e *Engine) MaxDistanceMiles() float64 {
	return e.maxDistanceMiles
}

// Compute returns the informative signals for a pair.
func (e *Engine) Compute(a, b Side) map[string]float64 {
	out := make(map[string]float64, len(Signals))
	if v, ok := NameSimilarity(a.Norm.NameTokens, b.Norm.NameTokens); ok {
		out[SignalName] = v
	}
	if v, ok := AddressSimilarity(a.Norm.Address, b.Norm.Address); ok {
		out[SignalAddress] = v
	}
	if v, ok := PhoneMatch(a.Norm.Phone, b.Norm.Phone); ok {
		out[SignalPhone] = v
	}
	if v, ok := Proximity(a.Listing.Coordinates, b.Listing.Coordinates, e.maxDistanceMiles); ok {
		out[SignalCoordinates] = v
	}
	if v, ok := WebsiteMatch(a.Norm.Domain, b.Norm.Domain); ok {
		out[SignalWebsite] = v
	}
	if v, ok := HoursOverlap(a.Listing.Hours, b.Listing.Hours); ok {
		out[SignalHours] = v
	}
	if v, ok := CategoryAlignment(a.Listing.Categories, b.Listing.Categories); ok {
		out[SignalCategory] = v
	}
	if v, ok := PriceCorrelation(a.Listing.PriceLevel, b.Listing.PriceLevel); ok {
		out[SignalPrice] = v
	}
	return out
}

// PhoneMatch is binary: 1 for equal valid numbers, 0 for different ones.
func PhoneMatch(a, b string) (float64, bool) {
	if !normalize.ValidPhone(a) || !normalize.ValidPhone(b) {
		return 0, false
	}
	if a == b {
		return 1, true
	}
	return 0, true
}

// Proximity decays linearly from 1 at zero distance to 0 at maxMiles.
func Proximity(a, b *model.Coordinate, maxMiles float64) (float64, bool) {
	if a == nil || b == nil || maxMiles <= 0 {
		return 0, false
	}
	return math.Max(0, 1-geo.DistanceMiles(*a, *b)/maxMiles), true
}

// sharedDomains host pages for many unrelated businesses, so equality on
// them says nothing about identity.
var sharedDomains = map[string]bool{
	"facebook.com":       true,
	"instagram.com":      true,
	"linktr.ee":          true,
	"yelp.com":           true,
	"google.com":         true,
	"goo.gl":             true,
	"twitter.com":        true,
	"x.com":              true,
	"tiktok.com":         true,
	"youtube.com":        true,
	"mindbodyonline.com": true,
}

// WebsiteMatch compares registrable domains.
func WebsiteMatch(a, b string) (float64, bool) {
	if a == "" || b == "" || sharedDomains[a] || sharedDomains[b] {
		return 0, false
	}
	if a == b {
		return 1, true
	}
	return 0, true
}

// PriceCorrelation gives full credit for equal levels and half for adjacent
// ones.
func PriceCorrelation(a, b *int) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	switch d := *a - *b; {
	case d == 0:
		return 1, true
	case d == 1 || d == -1:
		return 0.5, true
	}
	return 0, true
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}
