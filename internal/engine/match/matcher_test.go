package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/a-deal/gym-finder/internal/engine/resolve"
	"github.com/a-deal/gym-finder/internal/model"
)

var priority = []model.SourceID{"yelp", "places", "gmaps"}

func newMatcher(t *testing.T, strategy Strategy) *Matcher {
	t.Helper()
	r, err := resolve.New(resolve.Config{
		Threshold:        resolve.DefaultThreshold,
		MaxDistanceMiles: 0.25,
		SourcePriority:   priority,
	})
	require.NoError(t, err)
	return New(r, strategy, priority, zaptest.NewLogger(t))
}

func raw(id string, src model.SourceID, name, addr, phone string) model.RawListing {
	return model.RawListing{
		ID:      id,
		Source:  src,
		Listing: model.Listing{Name: name, Address: addr, Phone: phone},
	}
}

func threeSources() map[model.SourceID][]model.RawListing {
	return map[model.SourceID][]model.RawListing{
		"yelp": {
			raw("y0", "yelp", "Planet Fitness", "123 Main Street", "5551110000"),
			raw("y1", "yelp", "Iron Temple Barbell", "10 Elm Street", ""),
			raw("y2", "yelp", "Zen Yoga Loft", "987 Oak Avenue", ""),
		},
		"places": {
			raw("p0", "places", "Planet Fitness Gym", "123 Main St", "(555) 111-0000"),
			raw("p1", "places", "Crunch Fitness", "55 Broadway", ""),
			raw("p2", "places", "Zen Yoga Loft", "987 Oak Ave", ""),
		},
		"gmaps": {
			raw("g0", "gmaps", "Planet Fitness", "123 Main St", ""),
			raw("g1", "gmaps", "Iron Temple", "10 Elm St", ""),
		},
	}
}

func members(res model.RegionResult) [][]string {
	out := make([][]string, len(res.Listings))
	for i, l := range res.Listings {
		out[i] = l.Members
	}
	return out
}

func TestMatchRegion_TwoSourcesSameGym(t *testing.T) {
	m := newMatcher(t, StrategyOptimal)
	res := m.MatchRegion(map[model.SourceID][]model.RawListing{
		"yelp":   {raw("", "yelp", "Planet Fitness", "123 Main Street", "")},
		"places": {raw("", "places", "Planet Fitness Gym", "123 Main St", "")},
	})

	require.Len(t, res.Listings, 1)
	got := res.Listings[0]
	assert.Equal(t, []model.SourceID{"yelp", "places"}, got.Sources)
	assert.Equal(t, []string{"yelp#0", "places#0"}, got.Members)
	require.NotNil(t, got.MatchConfidence)
	assert.Greater(t, *got.MatchConfidence, resolve.DefaultThreshold)
	assert.Equal(t, 1, res.MergeCount)
	assert.Equal(t, *got.MatchConfidence, res.AvgConfidence)
	assert.Equal(t, map[model.SourceID]int{"yelp": 1, "places": 1}, res.RawCounts)
}

func TestMatchRegion_ThreeSourceFold(t *testing.T) {
	for _, strategy := range []Strategy{StrategyOptimal, StrategyGreedy} {
		t.Run(string(strategy), func(t *testing.T) {
			res := newMatcher(t, strategy).MatchRegion(threeSources())

			assert.Equal(t, [][]string{
				{"y0", "p0", "g0"},
				{"y1", "g1"},
				{"y2", "p2"},
				{"p1"},
			}, members(res))
			assert.Equal(t, []model.SourceID{"yelp", "places", "gmaps"}, res.Listings[0].Sources)
			assert.Nil(t, res.Listings[3].MatchConfidence)
			assert.Equal(t, 4, res.MergeCount)
		})
	}
}

func TestMatchRegion_EveryRawListingLandsOnce(t *testing.T) {
	input := threeSources()
	res := newMatcher(t, StrategyOptimal).MatchRegion(input)

	seen := map[string]int{}
	for _, l := range res.Listings {
		for _, id := range l.Members {
			seen[id]++
		}
		for _, s := range l.Sources {
			assert.True(t, l.HasSource(s))
		}
	}
	total := 0
	for _, raws := range input {
		total += len(raws)
		for _, r := range raws {
			assert.Equal(t, 1, seen[r.ID], r.ID)
		}
	}
	assert.Len(t, seen, total)
	assert.Equal(t, total, res.RawTotal())
}

func TestMatchRegion_Deterministic(t *testing.T) {
	m := newMatcher(t, StrategyOptimal)
	first := m.MatchRegion(threeSources())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, m.MatchRegion(threeSources()))
	}
}

func TestMatchRegion_MergedConfidenceIsMinimum(t *testing.T) {
	res := newMatcher(t, StrategyOptimal).MatchRegion(threeSources())
	pf := res.Listings[0]
	require.NotNil(t, pf.MatchConfidence)

	two := newMatcher(t, StrategyOptimal).MatchRegion(map[model.SourceID][]model.RawListing{
		"yelp":   {raw("y0", "yelp", "Planet Fitness", "123 Main Street", "5551110000")},
		"places": {raw("p0", "places", "Planet Fitness Gym", "123 Main St", "(555) 111-0000")},
	})
	require.NotNil(t, two.Listings[0].MatchConfidence)
	assert.LessOrEqual(t, *pf.MatchConfidence, *two.Listings[0].MatchConfidence)
}

func TestMatchRegion_SingleSourcePassesThrough(t *testing.T) {
	res := newMatcher(t, StrategyOptimal).MatchRegion(map[model.SourceID][]model.RawListing{
		"yelp": {
			raw("a", "yelp", "Planet Fitness", "123 Main Street", ""),
			raw("b", "yelp", "Planet Fitness", "123 Main Street", ""),
		},
	})
	require.Len(t, res.Listings, 2)
	for _, l := range res.Listings {
		assert.Nil(t, l.MatchConfidence)
		assert.False(t, l.IsMerged())
	}
	assert.Zero(t, res.MergeCount)
	assert.Zero(t, res.AvgConfidence)
}

func TestMatchRegion_EmptySourceContributesNothing(t *testing.T) {
	res := newMatcher(t, StrategyOptimal).MatchRegion(map[model.SourceID][]model.RawListing{
		"yelp":   {raw("y0", "yelp", "Planet Fitness", "123 Main Street", "")},
		"places": nil,
	})
	require.Len(t, res.Listings, 1)
	assert.Equal(t, 0, res.RawCounts["places"])
}

func TestMatchRegion_NoInput(t *testing.T) {
	res := newMatcher(t, StrategyOptimal).MatchRegion(nil)
	assert.NotNil(t, res.Listings)
	assert.Empty(t, res.Listings)
}

func TestMatchRegion_AssignsMissingAndDuplicateIDs(t *testing.T) {
	res := newMatcher(t, StrategyOptimal).MatchRegion(map[model.SourceID][]model.RawListing{
		"yelp": {
			raw("x", "yelp", "Alpha Gym", "1 First Ave", ""),
			raw("x", "yelp", "Beta Gym", "2 Second Ave", ""),
			raw("", "", "Gamma Gym", "3 Third Ave", ""),
		},
	})
	assert.Equal(t, [][]string{{"x"}, {"yelp#1"}, {"yelp#2"}}, members(res))
	assert.Equal(t, []model.SourceID{"yelp"}, res.Listings[2].Sources)
}

func TestMatchRegion_SourceOrder(t *testing.T) {
	m := newMatcher(t, StrategyOptimal)
	order := m.sourceOrder(map[model.SourceID][]model.RawListing{
		"zeta": nil, "gmaps": nil, "alpha": nil, "yelp": nil,
	})
	assert.Equal(t, []model.SourceID{"yelp", "gmaps", "alpha", "zeta"}, order)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyOptimal, s)

	s, err = ParseStrategy("greedy")
	require.NoError(t, err)
	assert.Equal(t, StrategyGreedy, s)

	_, err = ParseStrategy("random")
	assert.Error(t, err)
}
