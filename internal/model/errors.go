package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by sources and the engine.
var (
	// ErrPermanent marks a source error that retrying cannot fix.
	ErrPermanent = errors.New("permanent source error")
	// ErrRateLimited marks a provider throttling response.
	ErrRateLimited = errors.New("rate limited")
	// ErrMissingAPIKey is returned by sources configured without a key.
	// It is permanent.
	ErrMissingAPIKey = fmt.Errorf("%w: missing api key", ErrPermanent)
	// ErrUnknownMetro is returned for metro codes with no definition.
	ErrUnknownMetro = errors.New("unknown metro area")
	// ErrZipNotFound is returned when a ZIP code cannot be geocoded.
	ErrZipNotFound = errors.New("zip code not found")
)
