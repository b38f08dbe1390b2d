package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-deal/gym-finder/internal/model"
)

func TestGenerateRadiusGrid(t *testing.T) {
	center := model.Coordinate{Lat: 40.7506, Lng: -73.9972}
	regions, err := GenerateRadiusGrid(center, 2, 1)
	require.NoError(t, err)

	// 5x5 candidates; the four corners sit 2.83mi out, beyond 2 + 0.71.
	assert.Len(t, regions, 21)
	assert.Equal(t, "grid-r00-c01", regions[0].ID)
	assert.Equal(t, "grid-r04-c03", regions[len(regions)-1].ID)

	ids := map[string]bool{}
	for _, r := range regions {
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
		assert.InDelta(t, CellRadius(1), r.RadiusMiles, 1e-12)
	}
	byID := map[string]model.Region{}
	for _, r := range regions {
		byID[r.ID] = r
	}
	middle := byID["grid-r02-c02"]
	assert.InDelta(t, center.Lat, middle.Center.Lat, 1e-9)
	assert.InDelta(t, center.Lng, middle.Center.Lng, 1e-9)

	north := byID["grid-r00-c02"]
	assert.Greater(t, north.Center.Lat, center.Lat)
	assert.InDelta(t, MetersPerMile*2, geo.DistanceHaversine(center.Point(), north.Center.Point()), 5)

	east := byID["grid-r02-c03"]
	assert.Greater(t, east.Center.Lng, center.Lng)
	assert.InDelta(t, MetersPerMile, geo.DistanceHaversine(center.Point(), east.Center.Point()), 5)
}

func TestGenerateRadiusGrid_Invalid(t *testing.T) {
	_, err := GenerateRadiusGrid(model.Coordinate{}, 0, 1)
	assert.Error(t, err)
	_, err = GenerateRadiusGrid(model.Coordinate{}, 5, -1)
	assert.Error(t, err)
	_, err = GenerateRadiusGrid(model.Coordinate{}, 100, 0.5)
	assert.Error(t, err)
}

func TestGetMetroArea(t *testing.T) {
	m, err := GetMetroArea("NYC")
	require.NoError(t, err)
	assert.Equal(t, "New York City", m.Name)
	assert.Contains(t, m.ZipCodes, "10001")

	m.ZipCodes[0] = "changed"
	again, _ := GetMetroArea("nyc")
	assert.Equal(t, "10001", again.ZipCodes[0])

	_, err = GetMetroArea("atlantis")
	assert.True(t, errors.Is(err, model.ErrUnknownMetro))
}

func TestMetroCodes(t *testing.T) {
	assert.Equal(t, []string{"boston", "chicago", "la", "nyc", "seattle", "sf"}, MetroCodes())
}

func TestEveryMetroZipHasCentroid(t *testing.T) {
	g := NewStaticGeocoder(nil)
	for _, code := range MetroCodes() {
		m, err := GetMetroArea(code)
		require.NoError(t, err)
		for _, z := range m.ZipCodes {
			assert.True(t, ValidZip(z), z)
			_, err := g.Geocode(context.Background(), z)
			assert.NoError(t, err, "%s/%s", code, z)
		}
	}
}

func TestNominatimGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch r.URL.Query().Get("postalcode") {
		case "12345":
			_, _ = w.Write([]byte(`[{"lat":"42.81","lon":"-73.94","display_name":"Schenectady"}]`))
		case "99999":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "")
	ctx := context.Background()

	p, err := g.Geocode(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, model.Coordinate{Lat: 42.81, Lng: -73.94}, p)

	_, err = g.Geocode(ctx, "99999")
	assert.ErrorIs(t, err, model.ErrZipNotFound)

	_, err = g.Geocode(ctx, "abc")
	assert.ErrorIs(t, err, model.ErrZipNotFound)
}

func TestChainGeocoderAndZipRegions(t *testing.T) {
	fallback := NewStaticGeocoder(map[string]model.Coordinate{"12345": {Lat: 1, Lng: 2}})
	chain := ChainGeocoder{NewStaticGeocoder(nil), fallback}

	regions, failed := ZipRegions(context.Background(), chain, []string{"10001", "12345", " 10001", "00000"}, 3)

	require.Len(t, regions, 2)
	assert.Equal(t, "10001", regions[0].ID)
	assert.Equal(t, 3.0, regions[0].RadiusMiles)
	assert.Equal(t, model.Coordinate{Lat: 1, Lng: 2}, regions[1].Center)

	require.Len(t, failed, 1)
	assert.Equal(t, "00000", failed[0].Region.ID)
	assert.True(t, failed[0].Failed)
	assert.NotEmpty(t, failed[0].Error)
}

func TestDistanceMiles(t *testing.T) {
	nyc := model.Coordinate{Lat: 40.7506, Lng: -73.9972}
	assert.Zero(t, DistanceMiles(nyc, nyc))
	// One degree of latitude is about 69 miles.
	d := DistanceMiles(model.Coordinate{Lat: 40, Lng: -74}, model.Coordinate{Lat: 41, Lng: -74})
	assert.InDelta(t, 69.1, d, 0.5)
	assert.InDelta(t, d, DistanceMiles(model.Coordinate{Lat: 41, Lng: -74}, model.Coordinate{Lat: 40, Lng: -74}), 1e-9)
}
