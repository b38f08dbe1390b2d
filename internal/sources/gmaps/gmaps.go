// Package gmaps scrapes the Google Maps tbm=map search endpoint for gyms.
package gmaps

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/model"
	"github.com/a-deal/gym-finder/internal/sources/httpx"
)

// ID identifies Google Maps listings.
const ID model.SourceID = "gmaps"

const DefaultBaseURL = "https://www.google.com"

// Options configures the source. A zero Zoom derives the zoom level from
// the search radius.
type Options struct {
	BaseURL           string
	Lang              string
	Query             string
	MaxPages          int
	ProxyURL          string
	RequestsPerSecond float64
	Timeout           time.Duration
	Zoom              int
}

type Source struct {
	opts   Options
	client *client
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Source {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.Query == "" {
		opts.Query = "gym"
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 2
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := httpx.NewLimiter(opts.RequestsPerSecond, 1)
	return &Source{
		opts:   opts,
		client: newClient(opts.BaseURL, opts.Lang, opts.ProxyURL, opts.Timeout, limiter),
		logger: logger.With(zap.String("source", string(ID))),
	}
}

func (s *Source) ID() model.SourceID { return ID }

// Search walks result pages around center until a short page or MaxPages.
// Listings outside the radius are dropped; the map viewport is rectangular
// and overshoots the circle.
func (s *Source) Search(ctx context.Context, center model.Coordinate, radiusMiles float64) ([]model.RawListing, error) {
	zoom := s.opts.Zoom
	if zoom <= 0 {
		zoom = ZoomForRadius(center.Lat, radiusMiles*geo.MetersPerMile)
	}

	seen := make(map[string]bool)
	var out []model.RawListing
	for page := 0; page < s.opts.MaxPages; page++ {
		body, err := s.client.searchMap(ctx, center.Lat, center.Lng, zoom, s.opts.Query, page*pageSize)
		if err != nil {
			return nil, eris.Wrapf(err, "gmaps: search %.4f,%.4f page %d", center.Lat, center.Lng, page)
		}
		listings, more := ParseMapResponse(body)
		for _, l := range listings {
			if seen[l.ID] {
				continue
			}
			if l.Coordinates != nil && radiusMiles > 0 &&
				geo.DistanceMiles(center, *l.Coordinates) > radiusMiles {
				continue
			}
			seen[l.ID] = true
			out = append(out, l)
		}
		if !more {
			break
		}
	}
	s.logger.Debug("gmaps: search done", zap.Int("listings", len(out)), zap.Int("zoom", zoom))
	return out, nil
}
