package resolve

import (
	"errors"
	"math"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/a-deal/gym-finder/internal/engine/similarity"
)

// ErrInvalidWeights is returned for weight tables that cannot be
// renormalized, which would make every match decision meaningless.
var ErrInvalidWeights = errors.New("invalid signal weights")

// Weights maps signal names to their relative importance. Totals do not need
// to sum to 1; the resolver renormalizes per pair.
type Weights map[string]float64

// DefaultWeights returns the default weight table.
func DefaultWeights() Weights {
	return Weights{
		similarity.SignalName:        0.30,
		similarity.SignalAddress:     0.25,
		similarity.SignalPhone:       0.15,
		similarity.SignalCoordinates: 0.10,
		similarity.SignalWebsite:     0.15,
		similarity.SignalHours:       0.05,
		similarity.SignalCategory:    0.10,
		similarity.SignalPrice:       0.10,
	}
}

// Validate rejects unknown signals, negative or non-finite weights, and
// tables whose weights sum to zero.
func (w Weights) Validate() error {
	total := 0.0
	for name, v := range w {
		if !slices.Contains(similarity.Signals, name) {
			return eris.Wrapf(ErrInvalidWeights, "unknown signal %q", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return eris.Wrapf(ErrInvalidWeights, "weight %v for %q", v, name)
		}
		total += v
	}
	if total <= 0 {
		return eris.Wrap(ErrInvalidWeights, "weights sum to zero")
	}
	return nil
}

// With returns a copy of w with the given overrides applied.
func (w Weights) With(overrides map[string]float64) Weights {
	out := make(Weights, len(w)+len(overrides))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
