// Package places searches the Google Places API (New) for gyms.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/a-deal/gym-finder/internal/engine/geo"
	"github.com/a-deal/gym-finder/internal/model"
	"github.com/a-deal/gym-finder/internal/sources/httpx"
)

// ID identifies Google Places listings.
const ID model.SourceID = "places"

const (
	DefaultBaseURL  = "https://places.googleapis.com"
	maxRadiusMeters = 50000
	maxResultCount  = 20
)

var fieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.nationalPhoneNumber",
	"places.internationalPhoneNumber",
	"places.rating",
	"places.userRatingCount",
	"places.priceLevel",
	"places.websiteUri",
	"places.googleMapsUri",
	"places.location",
	"places.types",
	"places.regularOpeningHours",
}, ",")

var priceLevels = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

// Options configures the source.
type Options struct {
	APIKey            string
	BaseURL           string
	IncludedTypes     []string
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
	if len(opts.IncludedTypes) == 0 {
		opts.IncludedTypes = []string{"gym"}
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

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	MaxResultCount      int      `json:"maxResultCount"`
	LocationRestriction struct {
		Circle struct {
			Center latLng  `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type point struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type place struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress         string   `json:"formattedAddress"`
	NationalPhoneNumber      string   `json:"nationalPhoneNumber"`
	InternationalPhoneNumber string   `json:"internationalPhoneNumber"`
	Rating                   float64  `json:"rating"`
	UserRatingCount          int      `json:"userRatingCount"`
	PriceLevel               string   `json:"priceLevel"`
	WebsiteURI               string   `json:"websiteUri"`
	GoogleMapsURI            string   `json:"googleMapsUri"`
	Location                 *latLng  `json:"location"`
	Types                    []string `json:"types"`
	RegularOpeningHours      *struct {
		Periods []struct {
			Open  *point `json:"open"`
			Close *point `json:"close"`
		} `json:"periods"`
	} `json:"regularOpeningHours"`
}

// Search runs one nearby search. The endpoint does not page, so at most 20
// listings come back per region.
func (s *Source) Search(ctx context.Context, center model.Coordinate, radiusMiles float64) ([]model.RawListing, error) {
	if s.opts.APIKey == "" {
		return nil, eris.Wrap(model.ErrMissingAPIKey, "places")
	}

	var body searchRequest
	body.IncludedTypes = s.opts.IncludedTypes
	body.MaxResultCount = maxResultCount
	body.LocationRestriction.Circle.Center = latLng{Latitude: center.Lat, Longitude: center.Lng}
	body.LocationRestriction.Circle.Radius = min(radiusMiles*geo.MetersPerMile, maxRadiusMeters)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "places: encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+"/v1/places:searchNearby", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "places: building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.opts.APIKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	raw, err := httpx.Do(ctx, s.client, s.limiter, req)
	if err != nil {
		return nil, eris.Wrapf(err, "places: search %.4f,%.4f", center.Lat, center.Lng)
	}
	var resp struct {
		Places []place `json:"places"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, eris.Wrap(err, "places: decoding response")
	}

	out := make([]model.RawListing, 0, len(resp.Places))
	for _, p := range resp.Places {
		if p.DisplayName.Text == "" {
			continue
		}
		out = append(out, toRaw(p))
	}
	s.logger.Debug("places: search done", zap.Int("listings", len(out)))
	return out, nil
}

func toRaw(p place) model.RawListing {
	r := model.RawListing{
		ID:     p.ID,
		Source: ID,
		URL:    p.GoogleMapsURI,
		Listing: model.Listing{
			Name:       strings.TrimSpace(p.DisplayName.Text),
			Address:    p.FormattedAddress,
			Phone:      p.NationalPhoneNumber,
			Website:    p.WebsiteURI,
			Categories: append([]string(nil), p.Types...),
		},
	}
	if r.Phone == "" {
		r.Phone = p.InternationalPhoneNumber
	}
	if p.Location != nil {
		r.Coordinates = &model.Coordinate{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	if p.Rating > 0 {
		rating, count := p.Rating, p.UserRatingCount
		r.Rating, r.ReviewCount = &rating, &count
	}
	if lvl, ok := priceLevels[p.PriceLevel]; ok {
		r.PriceLevel = &lvl
	}
	if p.RegularOpeningHours != nil {
		r.Hours = convertHours(p)
	}
	return r
}

// convertHours maps the provider's periods to a weekly schedule. A lone
// period that opens and never closes means the place is always open.
func convertHours(p place) *model.Hours {
	periods := p.RegularOpeningHours.Periods
	if len(periods) == 1 && periods[0].Open != nil && periods[0].Close == nil {
		return &model.Hours{AlwaysOpen: true}
	}
	h := &model.Hours{}
	for _, per := range periods {
		if per.Open == nil || per.Close == nil {
			continue
		}
		h.Periods = append(h.Periods, model.Period{
			Day:      time.Weekday(per.Open.Day % 7),
			OpenMin:  per.Open.Hour*60 + per.Open.Minute,
			CloseDay: time.Weekday(per.Close.Day % 7),
			CloseMin: per.Close.Hour*60 + per.Close.Minute,
		})
	}
	if h.IsEmpty() {
		return nil
	}
	return h
}
