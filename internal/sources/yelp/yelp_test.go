package yelp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/a-deal/gym-finder/internal/model"
)

const onePage = `{
  "total": 2,
  "businesses": [
    {
      "id": "planet-fitness-nyc",
      "name": "Planet Fitness",
      "url": "https://www.yelp.com/biz/planet-fitness-nyc",
      "phone": "+15551110000",
      "rating": 4.0,
      "review_count": 120,
      "price": "$",
      "categories": [{"alias": "gyms", "title": "Gyms"}, {"alias": "healthtrainers", "title": "Trainers"}],
      "coordinates": {"latitude": 40.7501, "longitude": -73.9961},
      "location": {"display_address": ["123 Main St", "New York, NY 10001"]}
    },
    {
      "id": "closed-gym",
      "name": "Closed Gym",
      "is_closed": true
    }
  ]
}`

func TestSearch(t *testing.T) {
	var got http.Header
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/businesses/search", r.URL.Path)
		got = r.Header.Clone()
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(onePage))
	}))
	defer srv.Close()

	src := New(Options{APIKey: "k", BaseURL: srv.URL}, zaptest.NewLogger(t))
	listings, err := src.Search(context.Background(), model.Coordinate{Lat: 40.75, Lng: -73.99}, 30)
	require.NoError(t, err)

	assert.Equal(t, "Bearer k", got.Get("Authorization"))
	assert.Equal(t, "40000", query["radius"], "radius is capped")
	assert.Equal(t, "gyms,fitness", query["categories"])
	assert.Equal(t, "50", query["limit"])

	require.Len(t, listings, 1)
	l := listings[0]
	assert.Equal(t, "planet-fitness-nyc", l.ID)
	assert.Equal(t, ID, l.Source)
	assert.Equal(t, "https://www.yelp.com/biz/planet-fitness-nyc", l.URL)
	assert.Equal(t, "123 Main St, New York, NY 10001", l.Address)
	assert.Equal(t, "+15551110000", l.Phone)
	require.NotNil(t, l.PriceLevel)
	assert.Equal(t, 1, *l.PriceLevel)
	assert.Equal(t, []string{"gyms", "healthtrainers"}, l.Categories)
	require.NotNil(t, l.Coordinates)
	assert.Equal(t, 40.7501, l.Coordinates.Lat)
	require.NotNil(t, l.Rating)
	assert.Equal(t, 4.0, *l.Rating)
}

func TestSearch_Pages(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offsets = append(offsets, offset)
		fmt.Fprint(w, `{"total": 500, "businesses": [`)
		for i := 0; i < limit; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id": "b%d", "name": "Gym %d"}`, offset+i, offset+i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	src := New(Options{APIKey: "k", BaseURL: srv.URL, MaxResults: 120}, nil)
	listings, err := src.Search(context.Background(), model.Coordinate{}, 1)
	require.NoError(t, err)
	assert.Len(t, listings, 120)
	assert.Equal(t, []int{0, 50, 100}, offsets)
	assert.Equal(t, "b119", listings[119].ID)
}

func TestSearch_Errors(t *testing.T) {
	_, err := New(Options{}, nil).Search(context.Background(), model.Coordinate{}, 1)
	assert.ErrorIs(t, err, model.ErrMissingAPIKey)
	assert.ErrorIs(t, err, model.ErrPermanent)

	for status, want := range map[int]error{
		http.StatusUnauthorized:    model.ErrPermanent,
		http.StatusTooManyRequests: model.ErrRateLimited,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := New(Options{APIKey: "k", BaseURL: srv.URL}, nil).Search(context.Background(), model.Coordinate{}, 1)
		assert.ErrorIs(t, err, want, "status %d", status)
		srv.Close()
	}
}

func TestPriceLevel(t *testing.T) {
	for in, want := range map[string]int{"$": 1, "$$": 2, "$$$$": 4} {
		got, ok := PriceLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "N/A", "$$$$$", "€€"} {
		_, ok := PriceLevel(in)
		assert.False(t, ok, in)
	}
}
