// Package resolve turns similarity signals into a confidence score and a
// merge decision, and fuses matched listings into one record.
package resolve

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/a-deal/gym-finder/internal/engine/similarity"
	"github.com/a-deal/gym-finder/internal/model"
)

// ErrInvalidThreshold is returned for merge thresholds outside (0, 1].
var ErrInvalidThreshold = errors.New("invalid merge threshold")

const DefaultThreshold = 0.5

// Config holds the read-only settings of a Resolver.
type Config struct {
	Weights          Weights
	Threshold        float64
	MaxDistanceMiles float64
	// SourcePriority breaks completeness ties when fusing fields. Earlier
	// entries win; unlisted sources rank after listed ones.
	SourcePriority []model.SourceID
}

// Resolver scores pairs and merges matches. It is immutable after New and
// safe for concurrent use.
type Resolver struct {
	engine    *similarity.Engine
	weights   Weights
	threshold float64
	priority  map[model.SourceID]int
}

// New validates cfg and builds a Resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if !(cfg.Threshold > 0 && cfg.Threshold <= 1) {
		return nil, eris.Wrapf(ErrInvalidThreshold, "threshold %v", cfg.Threshold)
	}
	if cfg.MaxDistanceMiles <= 0 {
		return nil, eris.Errorf("resolve: max distance must be positive, got %v", cfg.MaxDistanceMiles)
	}
	priority := make(map[model.SourceID]int, len(cfg.SourcePriority))
	for i, s := range cfg.SourcePriority {
		if _, seen := priority[s]; !seen {
			priority[s] = i
		}
	}
	return &Resolver{
		engine:    similarity.New(cfg.MaxDistanceMiles),
		weights:   cfg.Weights.With(nil),
		threshold: cfg.Threshold,
		priority:  priority,
	}, nil
}

// Engine returns the similarity engine the resolver scores with.
func (r *Resolver) Engine() *similarity.Engine {
	return r.engine
}

// Threshold returns the merge threshold.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Score computes every informative signal and their weighted mean, with
// weights renormalized over the signals that returned a value.
func (r *Resolver) Score(a, b similarity.Side) model.MatchResult {
	signals := r.engine.Compute(a, b)
	var sum, total float64
	for _, name := range similarity.Signals {
		v, ok := signals[name]
		if !ok {
			continue
		}
		w := r.weights[name]
		if w <= 0 {
			continue
		}
		sum += w * v
		total += w
	}
	res := model.MatchResult{Signals: signals}
	if total > 0 {
		res.Confidence = sum / total
		res.Defined = true
	}
	return res
}

// Decide reports whether a scored pair should merge: confidence at or above
// the threshold, or an exact phone match.
func (r *Resolver) Decide(m model.MatchResult) bool {
	if !m.Defined {
		return false
	}
	if m.Confidence >= r.threshold {
		return true
	}
	phone, ok := m.Signal(similarity.SignalPhone)
	return ok && phone == 1
}

// rank is the best priority among sources; lower is better.
func (r *Resolver) rank(sources []model.SourceID) int {
	best := len(r.priority)
	for _, s := range sources {
		if p, ok := r.priority[s]; ok && p < best {
			best = p
		}
	}
	return best
}
