// Package region runs the search and match pipeline over many regions and
// aggregates their results.
package region

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a-deal/gym-finder/internal/model"
)

// Source is one listing provider. Implementations must be safe for
// concurrent use by several region tasks.
type Source interface {
	ID() model.SourceID
	Search(ctx context.Context, center model.Coordinate, radiusMiles float64) ([]model.RawListing, error)
}

// RetryConfig controls exponential backoff around source calls.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetry returns the retry policy used when none is configured.
func DefaultRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// Do calls fn until it succeeds, the attempts run out, ctx is done, or fn
// returns an error wrapping model.ErrPermanent. The delay doubles after each
// attempt, capped at MaxDelay, with up to 50% jitter added.
func (c RetryConfig) Do(ctx context.Context, logger *zap.Logger, op string, fn func(context.Context) error) error {
	attempts := max(c.MaxAttempts, 1)
	delay := c.BaseDelay
	var err error
	attempt := 1
	for ; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if errors.Is(err, model.ErrPermanent) || attempt >= attempts || ctx.Err() != nil {
			break
		}
		wait := withJitter(delay)
		logger.Warn("retry: attempt failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("wait", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return eris.Wrapf(err, "%s interrupted after %d attempts", op, attempt)
		case <-time.After(wait):
		}
		delay *= 2
		if c.MaxDelay > 0 && delay > c.MaxDelay {
			delay = c.MaxDelay
		}
	}
	return eris.Wrapf(err, "%s failed after %d attempts", op, attempt)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(d/2+1)
}

func isRateLimit(err error) bool {
	return err != nil && errors.Is(err, model.ErrRateLimited)
}
