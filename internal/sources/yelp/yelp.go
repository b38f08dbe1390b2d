// Package yelp searches the Yelp Fusion API for gyms.
package yelp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/model"
	"github.com/a-deal/gym-finder/internal/sources/httpx"
)

// ID identifies Yelp listings.
const ID model.SourceID = "yelp"

const (
	DefaultBaseURL = "https://api.yelp.com"
	// maxRadiusMeters is the largest radius the search endpoint accepts.
	maxRadiusMeters = 40000
	// maxWindow bounds offset+limit on the search endpoint.
	maxWindow = 1000
	pageLimit = 50
)

// Options configures the source.
type Options struct {
	APIKey            string
	BaseURL           string
	Categories        string
	MaxResults        int
	RequestsPerSecond float64
	Timeout           time.Duration
}

type Source struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Source {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Categories == "" {
		opts.Categories = "gyms,fitness"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: httpx.NewLimiter(opts.RequestsPerSecond, 1),
		logger:  logger.With(zap.String("source", string(ID))),
	}
}

func (s *Source) ID() model.SourceID { return ID }

type searchResponse struct {
	Total      int        `json:"total"`
	Businesses []business `json:"businesses"`
}

type business struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Phone       string  `json:"phone"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Price       string  `json:"price"`
	IsClosed    bool    `json:"is_closed"`
	Categories  []struct {
		Alias string `json:"alias"`
		Title string `json:"title"`
	} `json:"categories"`
	Coordinates struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"coordinates"`
	Location struct {
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}

// Search pages through the search endpoint until MaxResults listings are
// collected or the provider runs out.
func (s *Source) Search(ctx context.Context, center model.Coordinate, radiusMiles float64) ([]model.RawListing, error) {
	if s.opts.APIKey == "" {
		return nil, eris.Wrap(model.ErrMissingAPIKey, "yelp")
	}
	radius := min(int(radiusMiles*geo.MetersPerMile), maxRadiusMeters)

	var out []model.RawListing
	for offset := 0; offset < s.opts.MaxResults; {
		limit := min(pageLimit, s.opts.MaxResults-offset, maxWindow-offset)
		if limit <= 0 {
			break
		}
		page, err := s.page(ctx, center, radius, offset, limit)
		if err != nil {
			return nil, eris.Wrapf(err, "yelp: search %.4f,%.4f offset %d", center.Lat, center.Lng, offset)
		}
		for _, b := range page.Businesses {
			if b.Name == "" || b.IsClosed {
				continue
			}
			out = append(out, toRaw(b))
		}
		offset += len(page.Businesses)
		if len(page.Businesses) < limit || offset >= page.Total {
			break
		}
	}
	s.logger.Debug("yelp: search done", zap.Int("listings", len(out)), zap.Int("radius_m", radius))
	return out, nil
}

func (s *Source) page(ctx context.Context, center model.Coordinate, radius, offset, limit int) (*searchResponse, error) {
	q := url.Values{
		"latitude":   {strconv.FormatFloat(center.Lat, 'f', 6, 64)},
		"longitude":  {strconv.FormatFloat(center.Lng, 'f', 6, 64)},
		"radius":     {strconv.Itoa(radius)},
		"categories": {s.opts.Categories},
		"limit":      {strconv.Itoa(limit)},
		"offset":     {strconv.Itoa(offset)},
		"sort_by":    {"distance"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"/v3/businesses/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	req.Header.Set("Accept", "application/json")

	body, err := httpx.Do(ctx, s.client, s.limiter, req)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "decoding response")
	}
	return &resp, nil
}

func toRaw(b business) model.RawListing {
	r := model.RawListing{
		ID:     b.ID,
		Source: ID,
		URL:    b.URL,
		Listing: model.Listing{
			Name:    strings.TrimSpace(b.Name),
			Address: strings.Join(b.Location.DisplayAddress, ", "),
			Phone:   b.Phone,
		},
	}
	if b.Coordinates.Latitude != nil && b.Coordinates.Longitude != nil {
		r.Coordinates = &model.Coordinate{Lat: *b.Coordinates.Latitude, Lng: *b.Coordinates.Longitude}
	}
	if b.Rating > 0 {
		rating := b.Rating
		r.Rating = &rating
		reviews := b.ReviewCount
		r.ReviewCount = &reviews
	}
	if p, ok := PriceLevel(b.Price); ok {
		r.PriceLevel = &p
	}
	for _, c := range b.Categories {
		if c.Alias != "" {
			r.Categories = append(r.Categories, c.Alias)
		}
	}
	return r
}

// PriceLevel converts "$".."$$$$" to 1..4.
func PriceLevel(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4 || strings.Trim(s, "$") != "" {
		return 0, false
	}
	return len(s), true
}
