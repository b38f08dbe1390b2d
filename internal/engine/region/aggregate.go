package region

import (
	"slices"
	"strings"

	"github.com/a-deal/gym-finder/internal/engine/normalize"
	"github.com/a-deal/gym-finder/internal/engine/resolve"
	"github.com/a-deal/gym-finder/internal/engine/similarity"
	"github.com/a-deal/gym-finder/internal/model"
)

const (
	signatureNameRunes    = 20
	signatureAddressRunes = 30
)

// DedupConfig controls cross-region duplicate detection.
type DedupConfig struct {
	// NameOverlap and AddressOverlap are the shared-character counts a pair
	// must exceed.
	NameOverlap    int
	AddressOverlap int
	// Verify additionally requires the resolver to accept the pair.
	Verify bool
}

// DefaultDedup returns the default cross-region dedup settings.
func DefaultDedup() DedupConfig {
	return DedupConfig{NameOverlap: 3, AddressOverlap: 5, Verify: true}
}

type signature struct {
	name, address map[rune]bool
}

func signatureOf(l *model.Listing, c *normalize.Cache) signature {
	return signature{
		name:    runeSet(c.Name(l.Name), signatureNameRunes),
		address: runeSet(c.Address(l.Address), signatureAddressRunes),
	}
}

// runeSet collects the distinct non-space runes among the first limit runes.
func runeSet(s string, limit int) map[rune]bool {
	set := make(map[rune]bool)
	i := 0
	for _, r := range s {
		if i == limit {
			break
		}
		i++
		if r != ' ' {
			set[r] = true
		}
	}
	return set
}

func overlap(a, b map[rune]bool) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for r := range a {
		if b[r] {
			n++
		}
	}
	return n
}

// Aggregate joins region results into one view. Regions are sorted by ID;
// failed regions are kept in the output but take no part in dedup. A listing
// found again in a later region is fused into its earliest copy and removed
// from the later region.
func Aggregate(results []model.RegionResult, resolver *resolve.Resolver, cfg DedupConfig) model.AggregateResult {
	regions := make([]model.RegionResult, len(results))
	for i, r := range results {
		r.Listings = slices.Clone(r.Listings)
		r.DuplicatesRemoved = 0
		regions[i] = r
	}
	slices.SortStableFunc(regions, func(a, b model.RegionResult) int {
		return strings.Compare(a.Region.ID, b.Region.ID)
	})

	stats := model.Stats{
		RegionsTotal:       len(regions),
		SourceDistribution: map[model.SourceID]int{},
	}
	var confSum float64
	var perRegion []int
	for _, r := range regions {
		if r.PartialFailure() {
			stats.RegionsPartial++
		}
		if r.Failed {
			stats.RegionsFailed++
			continue
		}
		stats.TotalRaw += r.RawTotal()
		stats.TotalListings += len(r.Listings)
		stats.MergeCount += r.MergeCount
		confSum += r.AvgConfidence * float64(r.MergeCount)
		for src, n := range r.RawCounts {
			stats.SourceDistribution[src] += n
		}
		perRegion = append(perRegion, len(r.Listings))
	}
	stats.RegionsSucceeded = stats.RegionsTotal - stats.RegionsFailed
	stats.ListingsPerRegion = spread(perRegion)
	if stats.MergeCount > 0 {
		stats.AverageConfidence = confSum / float64(stats.MergeCount)
	}
	if stats.TotalListings > 0 {
		stats.MergeRate = float64(stats.MergeCount) / float64(stats.TotalListings) * 100
	}

	removed := dedup(regions, resolver, cfg)

	var listings []model.MergedListing
	for i := range regions {
		if regions[i].Failed {
			continue
		}
		listings = append(listings, regions[i].Listings...)
	}
	if listings == nil {
		listings = []model.MergedListing{}
	}
	stats.UniqueEntities = len(listings)
	stats.CrossRegionDuplicates = removed
	if stats.TotalRaw > 0 {
		stats.DuplicationRate = float64(removed) / float64(stats.TotalRaw) * 100
	}
	return model.AggregateResult{Regions: regions, Listings: listings, Stats: stats}
}

type entry struct {
	region  int
	index   int
	sig     signature
	removed bool
}

// dedup rewrites regions in place and returns the number of listings
// removed.
func dedup(regions []model.RegionResult, resolver *resolve.Resolver, cfg DedupConfig) int {
	cache := normalize.NewCache()
	var entries []*entry
	for ri := range regions {
		if regions[ri].Failed {
			continue
		}
		for li := range regions[ri].Listings {
			sig := signatureOf(&regions[ri].Listings[li].Listing, cache)
			entries = append(entries, &entry{region: ri, index: li, sig: sig})
		}
	}

	removed := 0
	for ai, a := range entries {
		if a.removed {
			continue
		}
		keep := &regions[a.region].Listings[a.index]
		for _, b := range entries[ai+1:] {
			if b.removed || b.region == a.region {
				continue
			}
			if overlap(a.sig.name, b.sig.name) <= cfg.NameOverlap ||
				overlap(a.sig.address, b.sig.address) <= cfg.AddressOverlap {
				continue
			}
			dup := regions[b.region].Listings[b.index]
			if cfg.Verify {
				res := resolver.Score(similarity.NewSide(&keep.Listing, cache), similarity.NewSide(&dup.Listing, cache))
				if !resolver.Decide(res) {
					continue
				}
			}
			fused := resolver.Fuse(*keep, dup)
			fused.Region = regions[a.region].Region.ID
			if id := regions[b.region].Region.ID; !slices.Contains(fused.AlsoFoundIn, id) {
				fused.AlsoFoundIn = append(fused.AlsoFoundIn, id)
			}
			*keep = fused
			b.removed = true
			regions[b.region].DuplicatesRemoved++
			removed++
		}
	}

	gone := make(map[[2]int]bool, removed)
	for _, e := range entries {
		if e.removed {
			gone[[2]int{e.region, e.index}] = true
		}
	}
	for ri := range regions {
		if regions[ri].DuplicatesRemoved == 0 {
			continue
		}
		kept := make([]model.MergedListing, 0, len(regions[ri].Listings)-regions[ri].DuplicatesRemoved)
		for li, l := range regions[ri].Listings {
			if !gone[[2]int{ri, li}] {
				kept = append(kept, l)
			}
		}
		regions[ri].Listings = kept
	}
	return removed
}

func spread(counts []int) model.Spread {
	if len(counts) == 0 {
		return model.Spread{}
	}
	s := model.Spread{Max: counts[0], Min: counts[0]}
	total := 0
	for _, c := range counts {
		total += c
		s.Max = max(s.Max, c)
		s.Min = min(s.Min, c)
	}
	s.Avg = float64(total) / float64(len(counts))
	return s
}
