// Package match pairs listings from different sources within one region and
// folds them into merged records.
package match

import (
	"fmt"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/engine/normalize"
	"github.com/a-deal/gym-finder/internal/engine/resolve"
	"github.com/a-deal/gym-finder/internal/engine/similarity"
	"github.com/a-deal/gym-finder/internal/model"
)

// Strategy selects the assignment algorithm.
type Strategy string

const (
	// StrategyOptimal maximizes total confidence (Hungarian method).
	StrategyOptimal Strategy = "optimal"
	// StrategyGreedy takes pairs by descending confidence.
	StrategyGreedy Strategy = "greedy"
)

// ParseStrategy validates a strategy name. Empty means optimal.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyOptimal:
		return StrategyOptimal, nil
	case StrategyGreedy:
		return StrategyGreedy, nil
	}
	return "", eris.Errorf("match: unknown strategy %q", s)
}

// Matcher is read-only after construction and may be shared by concurrent
// region tasks; all per-region state lives in MatchRegion.
type Matcher struct {
	resolver *resolve.Resolver
	strategy Strategy
	priority []model.SourceID
	logger   *zap.Logger
}

// New builds a Matcher. Sources are folded in priority order, then
// lexically.
func New(r *resolve.Resolver, strategy Strategy, priority []model.SourceID, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strategy == "" {
		strategy = StrategyOptimal
	}
	return &Matcher{
		resolver: r,
		strategy: strategy,
		priority: slices.Clone(priority),
		logger:   logger,
	}
}

// MatchRegion folds every source's listings into one set of merged records.
// Each raw listing ends up in exactly one output record. Region and failure
// fields of the result are left to the caller.
func (m *Matcher) MatchRegion(rawBySource map[model.SourceID][]model.RawListing) model.RegionResult {
	cache := normalize.NewCache()
	res := model.RegionResult{RawCounts: make(map[model.SourceID]int, len(rawBySource))}
	seen := make(map[string]bool)

	var cumulative []model.MergedListing
	var confidences []float64
	for n, src := range m.sourceOrder(rawBySource) {
		raws := rawBySource[src]
		batch := make([]model.MergedListing, 0, len(raws))
		for i, raw := range raws {
			raw.Source = src
			raw.ID = uniqueID(raw.ID, src, i, seen)
			batch = append(batch, model.Standalone(raw))
		}
		res.RawCounts[src] = len(batch)
		if n == 0 {
			cumulative = batch
			continue
		}
		var merged []float64
		cumulative, merged = m.fold(cumulative, batch, cache)
		confidences = append(confidences, merged...)
		m.logger.Debug("match: folded source",
			zap.String("source", string(src)),
			zap.Int("incoming", len(batch)),
			zap.Int("merged", len(merged)),
			zap.Int("total", len(cumulative)))
	}

	if cumulative == nil {
		cumulative = []model.MergedListing{}
	}
	res.Listings = cumulative
	res.MergeCount = len(confidences)
	m.logger.Debug("match: region matched",
		zap.Int("listings", len(cumulative)),
		zap.Int("merged", len(confidences)),
		zap.Int("normalized", cache.Len()))
	if len(confidences) > 0 {
		sum := 0.0
		for _, c := range confidences {
			sum += c
		}
		res.AvgConfidence = sum / float64(len(confidences))
	}
	return res
}

// fold matches an incoming source against the records built so far. Matched
// pairs merge in place; unmatched incoming records are appended in order.
func (m *Matcher) fold(left, right []model.MergedListing, cache *normalize.Cache) ([]model.MergedListing, []float64) {
	ls, rs := sides(left, cache), sides(right, cache)
	maxMiles := m.resolver.Engine().MaxDistanceMiles()

	var edges []edge
	conf := make(map[[2]int]float64)
	for i := range ls {
		for j := range rs {
			if !candidate(ls[i], rs[j], maxMiles) {
				continue
			}
			res := m.resolver.Score(ls[i], rs[j])
			if !m.resolver.Decide(res) {
				continue
			}
			edges = append(edges, edge{left: i, right: j, weight: res.Confidence})
			conf[[2]int{i, j}] = res.Confidence
		}
	}

	var pairs []int
	if m.strategy == StrategyGreedy {
		pairs = greedyAssignment(len(left), len(right), edges)
	} else {
		pairs = optimalAssignment(len(left), len(right), edges)
	}

	out := make([]model.MergedListing, 0, len(left)+len(right))
	var merged []float64
	used := make([]bool, len(right))
	for i, l := range left {
		j := pairs[i]
		if j < 0 {
			out = append(out, l)
			continue
		}
		c := conf[[2]int{i, j}]
		out = append(out, m.resolver.Merge(l, right[j], c))
		merged = append(merged, c)
		used[j] = true
	}
	for j, r := range right {
		if !used[j] {
			out = append(out, r)
		}
	}
	return out, merged
}

// candidate is the cheap pre-filter run before scoring: a shared name token,
// an equal phone, the same house number, or coordinates within range.
func candidate(a, b similarity.Side, maxMiles float64) bool {
	for _, t := range a.Norm.NameTokens {
		if slices.Contains(b.Norm.NameTokens, t) {
			return true
		}
	}
	if normalize.ValidPhone(a.Norm.Phone) && a.Norm.Phone == b.Norm.Phone {
		return true
	}
	if n := houseNumber(a.Norm.Address); n != "" && n == houseNumber(b.Norm.Address) {
		return true
	}
	ca, cb := a.Listing.Coordinates, b.Listing.Coordinates
	return ca != nil && cb != nil && geo.DistanceMiles(*ca, *cb) <= maxMiles
}

func houseNumber(addr string) string {
	toks := normalize.Tokens(addr)
	if len(toks) == 0 || toks[0][0] < '0' || toks[0][0] > '9' {
		return ""
	}
	return toks[0]
}

func sides(list []model.MergedListing, cache *normalize.Cache) []similarity.Side {
	out := make([]similarity.Side, len(list))
	for i := range list {
		out[i] = similarity.NewSide(&list[i].Listing, cache)
	}
	return out
}

func (m *Matcher) sourceOrder(rawBySource map[model.SourceID][]model.RawListing) []model.SourceID {
	order := make([]model.SourceID, 0, len(rawBySource))
	for src := range rawBySource {
		order = append(order, src)
	}
	rank := func(s model.SourceID) int {
		if i := slices.Index(m.priority, s); i >= 0 {
			return i
		}
		return len(m.priority)
	}
	slices.SortFunc(order, func(a, b model.SourceID) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return order
}

// uniqueID keeps the source's own ID unless it is empty or already used in
// this region pass.
func uniqueID(id string, src model.SourceID, index int, seen map[string]bool) string {
	if id == "" || seen[id] {
		id = fmt.Sprintf("%s#%d", src, index)
		for n := 1; seen[id]; n++ {
			id = fmt.Sprintf("%s#%d.%d", src, index, n)
		}
	}
	seen[id] = true
	return id
}
