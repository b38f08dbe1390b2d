package similarity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/engine/normalize"
	"github.com/a-deal/gym-finder/internal/model"
)

func intp(v int) *int { return &v }

func daily(openHour, closeHour int) *model.Hours {
	h := &model.Hours{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		h.Periods = append(h.Periods, model.Period{Day: d, OpenMin: openHour * 60, CloseDay: d, CloseMin: closeHour * 60})
	}
	return h
}

func TestNameSimilarity(t *testing.T) {
	v, ok := NameSimilarity([]string{"planet", "fitness"}, []string{"planet", "fitness", "gym"})
	require.True(t, ok)
	assert.InDelta(t, 3.0/3.5, v, 1e-9)

	v, ok = NameSimilarity([]string{"fitness", "planet"}, []string{"planet", "fitness"})
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = NameSimilarity([]string{"gym"}, []string{"gymnasium"})
	require.True(t, ok)
	assert.InDelta(t, 0.8, v, 1e-9)

	v, ok = NameSimilarity([]string{"crunch"}, []string{"equinox"})
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = NameSimilarity(nil, []string{"crunch"})
	assert.False(t, ok)
}

func TestNameSimilarity_GenericWordsCountLess(t *testing.T) {
	chain, _ := NameSimilarity([]string{"iron", "fitness"}, []string{"zen", "fitness"})
	distinct, _ := NameSimilarity([]string{"iron", "temple"}, []string{"zen", "temple"})
	assert.Less(t, chain, distinct)
	assert.InDelta(t, 1.0/3.0, chain, 1e-9)
}

func TestEditSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, editSimilarity("", ""))
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
	assert.InDelta(t, 1-1.0/7.0, editSimilarity("pilates", "pilatez"), 1e-9)
}

func TestAddressSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
		ok   bool
	}{
		{"identical", "123 main st", "123 main st", 1, true},
		{"unit on one side", "123 main st", "123 main st ste 200", addressOtherUnit, true},
		{"same unit, city differs", "123 main st ste 200", "123 main st ste 200 new york ny", addressSameUnit, true},
		{"state fl is not a floor", "100 ocean dr miami fl 33139", "100 ocean dr fl 33139", addressSameUnit, true},
		{"street only", "123 main st", "456 main st", addressStreetOnly, true},
		{"street without type", "1 broadway new york ny", "1 broadway ste 4", addressOtherUnit, true},
		{"nothing shared", "123 main st", "9 elm ave", 0, true},
		{"missing", "", "123 main st", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AddressSimilarity(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPhoneMatch(t *testing.T) {
	v, ok := PhoneMatch("5551234567", "5551234567")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = PhoneMatch("5551234567", "5559999999")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = PhoneMatch("5551234", "5551234")
	assert.False(t, ok)
	_, ok = PhoneMatch("", "5551234567")
	assert.False(t, ok)
}

func TestProximity(t *testing.T) {
	a := &model.Coordinate{Lat: 40.7506, Lng: -73.9935}

	v, ok := Proximity(a, a, 0.25)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	// An eighth of a mile north.
	b := &model.Coordinate{Lat: a.Lat + 0.125/geo.DistanceMiles(model.Coordinate{Lat: 0}, model.Coordinate{Lat: 1}), Lng: a.Lng}
	v, ok = Proximity(a, b, 0.25)
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 0.01)

	far := &model.Coordinate{Lat: 40.80, Lng: -73.95}
	v, _ = Proximity(a, far, 0.25)
	assert.Equal(t, 0.0, v)

	_, ok = Proximity(a, nil, 0.25)
	assert.False(t, ok)
}

func TestWebsiteMatch(t *testing.T) {
	v, ok := WebsiteMatch("crunch.com", "crunch.com")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = WebsiteMatch("crunch.com", "equinox.com")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = WebsiteMatch("facebook.com", "facebook.com")
	assert.False(t, ok)
	_, ok = WebsiteMatch("", "crunch.com")
	assert.False(t, ok)
}

func TestHoursOverlap(t *testing.T) {
	v, ok := HoursOverlap(daily(6, 22), daily(6, 22))
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = HoursOverlap(daily(6, 22), daily(6, 14))
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)

	v, ok = HoursOverlap(&model.Hours{AlwaysOpen: true}, &model.Hours{AlwaysOpen: true})
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = HoursOverlap(daily(6, 22), &model.Hours{})
	assert.False(t, ok)
	_, ok = HoursOverlap(nil, daily(6, 22))
	assert.False(t, ok)
}

func TestCategoryAlignment(t *testing.T) {
	v, ok := CategoryAlignment([]string{"gyms"}, []string{"Gym"})
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = CategoryAlignment([]string{"martialarts"}, []string{"Martial Arts"})
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = CategoryAlignment([]string{"gym"}, []string{"yoga"})
	require.True(t, ok)
	assert.InDelta(t, 0.125, v, 1e-9)

	v, ok = CategoryAlignment([]string{"boxing"}, []string{"yoga"})
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = CategoryAlignment([]string{"point_of_interest", "establishment"}, []string{"gym"})
	assert.False(t, ok)
}

func TestPriceCorrelation(t *testing.T) {
	v, _ := PriceCorrelation(intp(2), intp(2))
	assert.Equal(t, 1.0, v)
	v, _ = PriceCorrelation(intp(2), intp(3))
	assert.Equal(t, 0.5, v)
	v, ok := PriceCorrelation(intp(1), intp(4))
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	v, ok = PriceCorrelation(intp(0), intp(0))
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = PriceCorrelation(nil, intp(1))
	assert.False(t, ok)
}

func TestCompute(t *testing.T) {
	e := New(0.25)
	a := &model.Listing{
		Name:        "Planet Fitness",
		Address:     "123 Main Street",
		Phone:       "(555) 123-4567",
		Coordinates: &model.Coordinate{Lat: 40.75, Lng: -73.99},
		Website:     "https://www.planetfitness.com/gyms/nyc",
		PriceLevel:  intp(1),
		Categories:  []string{"gyms"},
	}
	b := &model.Listing{
		Name:        "Planet Fitness Gym",
		Address:     "123 Main St",
		Phone:       "+1 555 123 4567",
		Coordinates: &model.Coordinate{Lat: 40.75, Lng: -73.99},
		Website:     "planetfitness.com",
		PriceLevel:  intp(1),
		Categories:  []string{"gym", "fitness_center"},
	}

	signals := e.Compute(NewSide(a, nil), NewSide(b, nil))
	assert.Len(t, signals, 7)
	assert.NotContains(t, signals, SignalHours)
	assert.Equal(t, 1.0, signals[SignalAddress])
	assert.Equal(t, 1.0, signals[SignalPhone])
	assert.Equal(t, 1.0, signals[SignalCoordinates])
	assert.Equal(t, 1.0, signals[SignalWebsite])
	assert.Equal(t, 1.0, signals[SignalPrice])
	assert.Greater(t, signals[SignalName], 0.8)
}

func TestCompute_Symmetric(t *testing.T) {
	e := New(0.25)
	listings := []*model.Listing{
		{Name: "Planet Fitness", Address: "123 Main Street", Categories: []string{"gym"}},
		{Name: "Planet Fitness Gym", Address: "123 Main St Suite 4", Hours: daily(5, 23)},
		{Name: "Crunch", Phone: "555-123-4567", Coordinates: &model.Coordinate{Lat: 40.7, Lng: -74}},
		{Name: "Zen Yoga Loft", Phone: "(555) 123-4567", Hours: daily(7, 20), Categories: []string{"yoga"}},
		{Name: "Gymnasium Athletic Club", Coordinates: &model.Coordinate{Lat: 40.7001, Lng: -74.0001}, PriceLevel: intp(3)},
		{Name: "", Website: "https://crunch.com", PriceLevel: intp(2)},
	}
	c := normalize.NewCache()
	for i, a := range listings {
		for j, b := range listings {
			ab := e.Compute(NewSide(a, c), NewSide(b, c))
			ba := e.Compute(NewSide(b, c), NewSide(a, c))
			assert.Equal(t, ab, ba, "pair %d,%d", i, j)
		}
	}
}
