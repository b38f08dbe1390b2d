package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/a-deal/gym-finder/internal/model"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// ValidZip reports whether s is a five-digit US ZIP code.
func ValidZip(s string) bool {
	return zipPattern.MatchString(s)
}

// Geocoder resolves a ZIP code to its centroid.
type Geocoder interface {
	Geocode(ctx context.Context, zip string) (model.Coordinate, error)
}

// StaticGeocoder answers from the built-in centroid table.
type StaticGeocoder struct {
	centroids map[string]model.Coordinate
}

// NewStaticGeocoder returns a geocoder over the built-in table plus extra
// entries, which take precedence.
func NewStaticGeocoder(extra map[string]model.Coordinate) *StaticGeocoder {
	c := make(map[string]model.Coordinate, len(zipCentroids)+len(extra))
	for z, p := range zipCentroids {
		c[z] = p
	}
	for z, p := range extra {
		c[z] = p
	}
	return &StaticGeocoder{centroids: c}
}

func (g *StaticGeocoder) Geocode(_ context.Context, zip string) (model.Coordinate, error) {
	if p, ok := g.centroids[zip]; ok {
		return p, nil
	}
	return model.Coordinate{}, eris.Wrapf(model.ErrZipNotFound, "zip %q", zip)
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// DefaultNominatimURL is the public OSM search endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder looks ZIP codes up with the OSM Nominatim API. Requests
// are limited to one per second as the public service requires.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewNominatimGeocoder builds a geocoder. An empty baseURL uses the public
// service.
func NewNominatimGeocoder(baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = "gymtap/0.1 (gym listing aggregator)"
	}
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, zip string) (model.Coordinate, error) {
	if !ValidZip(zip) {
		return model.Coordinate{}, eris.Wrapf(model.ErrZipNotFound, "invalid zip %q", zip)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: waiting for rate limiter")
	}

	u := g.baseURL + "/search?" + url.Values{
		"postalcode":   {zip},
		"countrycodes": {"us"},
		"format":       {"json"},
		"limit":        {"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: creating request")
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinate{}, eris.Errorf("geocode: status %d for zip %s", resp.StatusCode, zip)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.Coordinate{}, eris.Wrap(err, "geocode: decoding response")
	}
	if len(results) == 0 {
		return model.Coordinate{}, eris.Wrapf(model.ErrZipNotFound, "zip %q", zip)
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return model.Coordinate{}, eris.Errorf("geocode: invalid coordinates %q,%q", results[0].Lat, results[0].Lon)
	}
	return model.Coordinate{Lat: lat, Lng: lng}, nil
}

// ChainGeocoder tries each geocoder in turn and returns the first answer.
type ChainGeocoder []Geocoder

func (c ChainGeocoder) Geocode(ctx context.Context, zip string) (model.Coordinate, error) {
	var errs []error
	for _, g := range c {
		p, err := g.Geocode(ctx, zip)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return model.Coordinate{}, eris.Wrapf(model.ErrZipNotFound, "zip %q", zip)
	}
	return model.Coordinate{}, errors.Join(errs...)
}

// ZipRegions geocodes each ZIP into a region of the given radius. ZIPs that
// cannot be geocoded come back as failed results so they still count in the
// run's statistics.
func ZipRegions(ctx context.Context, g Geocoder, zips []string, radiusMiles float64) ([]model.Region, []model.RegionResult) {
	var regions []model.Region
	var failed []model.RegionResult
	seen := make(map[string]bool, len(zips))
	for _, zip := range zips {
		zip = strings.TrimSpace(zip)
		if seen[zip] {
			continue
		}
		seen[zip] = true
		center, err := g.Geocode(ctx, zip)
		if err != nil {
			failed = append(failed, model.RegionResult{
				Region:    model.Region{ID: zip, RadiusMiles: radiusMiles},
				Listings:  []model.MergedListing{},
				RawCounts: map[model.SourceID]int{},
				Failed:    true,
				Error:     err.Error(),
			})
			continue
		}
		regions = append(regions, model.Region{ID: zip, Center: center, RadiusMiles: radiusMiles})
	}
	return regions, failed
}
