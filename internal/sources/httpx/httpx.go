// Package httpx holds the request plumbing shared by the listing sources.
package httpx

import (
	"context"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/a-deal/gym-finder/internal/model"
)

// MaxBodyBytes caps how much of a response is read.
const MaxBodyBytes = 16 << 20

// NewLimiter returns a token bucket of rps requests per second. A
// non-positive rps disables throttling.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// CheckStatus maps an HTTP status to the error taxonomy the runner retries
// on. Redirects count as throttling: providers bounce blocked clients to
// consent or captcha pages.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests, code >= 300 && code < 400:
		return eris.Wrapf(model.ErrRateLimited, "status %d", code)
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusBadRequest, code == http.StatusNotFound:
		return eris.Wrapf(model.ErrPermanent, "status %d", code)
	}
	return eris.Errorf("unexpected status %d", code)
}

// Do waits for the limiter, sends req and returns the body of a successful
// response.
func Do(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "waiting for rate limiter")
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "executing request")
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodyBytes))
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "reading body")
	}
	return body, nil
}
