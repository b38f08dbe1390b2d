// Package sources builds the configured listing sources.
package sources

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a-deal/gym-finder/internal/config"
	"github.com/a-deal/gym-finder/internal/engine/region"
	"github.com/a-deal/gym-finder/internal/sources/gmaps"
	"github.com/a-deal/gym-finder/internal/sources/places"
	"github.com/a-deal/gym-finder/internal/sources/yelp"
)

// Names lists the known source IDs.
func Names() []string {
	return []string{string(yelp.ID), string(places.ID), string(gmaps.ID)}
}

// ParseNames splits a comma-separated source list, dropping blanks and
// repeats.
func ParseNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Build returns one source per name, in order.
func Build(names []string, cfg config.Sources, logger *zap.Logger) ([]region.Source, error) {
	if len(names) == 0 {
		return nil, eris.New("sources: none selected")
	}
	out := make([]region.Source, 0, len(names))
	for _, name := range names {
		switch name {
		case string(yelp.ID):
			out = append(out, yelp.New(yelp.Options{
				APIKey:            cfg.Yelp.APIKey,
				BaseURL:           cfg.Yelp.BaseURL,
				Categories:        cfg.Yelp.Categories,
				MaxResults:        cfg.Yelp.MaxResults,
				RequestsPerSecond: cfg.Yelp.RequestsPerSecond,
				Timeout:           cfg.Yelp.Timeout.Duration,
			}, logger))
		case string(places.ID):
			out = append(out, places.New(places.Options{
				APIKey:            cfg.Places.APIKey,
				BaseURL:           cfg.Places.BaseURL,
				IncludedTypes:     cfg.Places.IncludedTypes,
				RequestsPerSecond: cfg.Places.RequestsPerSecond,
				Timeout:           cfg.Places.Timeout.Duration,
			}, logger))
		case string(gmaps.ID):
			out = append(out, gmaps.New(gmaps.Options{
				BaseURL:           cfg.Gmaps.BaseURL,
				Lang:              cfg.Gmaps.Lang,
				Query:             cfg.Gmaps.Query,
				MaxPages:          cfg.Gmaps.MaxPages,
				ProxyURL:          cfg.Gmaps.ProxyURL,
				RequestsPerSecond: cfg.Gmaps.RequestsPerSecond,
				Timeout:           cfg.Gmaps.Timeout.Duration,
				Zoom:              cfg.Gmaps.Zoom,
			}, logger))
		default:
			return nil, eris.Errorf("sources: unknown source %q (known: %s)", name, strings.Join(Names(), ", "))
		}
	}
	return out, nil
}
