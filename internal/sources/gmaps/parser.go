package gmaps

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/a-deal/gym-finder/internal/model"
)

// ParseMapResponse parses a tbm=map response into listings and reports
// whether another page may follow.
func ParseMapResponse(body []byte) ([]model.RawListing, bool) {
	// Strip the anti-XSS prefix )]}'
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 && idx < 10 {
		body = body[idx+1:]
	}

	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}

	// Results live at root[0][1][1..N][14]; index 0 is search metadata.
	items := safeSlice(safeGet(raw, 0, 1))
	if len(items) == 0 {
		return nil, false
	}

	var listings []model.RawListing
	seen := 0
	for i := 1; i < len(items); i++ {
		biz := safeSlice(safeGet(items, i, 14))
		if len(biz) == 0 {
			continue
		}
		seen++
		if l, ok := parseBusiness(biz); ok {
			listings = append(listings, l)
		}
	}
	return listings, seen >= pageSize
}

func parseBusiness(biz []any) (model.RawListing, bool) {
	name := strings.TrimSpace(safeString(safeGet(biz, 11)))
	if name == "" {
		return model.RawListing{}, false
	}
	placeID := safeString(safeGet(biz, 78))
	id := placeID
	if id == "" {
		id = safeString(safeGet(biz, 10))
	}

	l := model.RawListing{
		ID:     id,
		Source: ID,
		URL:    placeURL(placeID),
		Listing: model.Listing{
			Name:    name,
			Address: address(biz, name),
			Phone:   safeString(safeGet(biz, 178, 0, 0)),
			Website: safeString(safeGet(biz, 7, 0)),
		},
	}

	lat, lng := safeFloat(safeGet(biz, 9, 2)), safeFloat(safeGet(biz, 9, 3))
	if lat != 0 || lng != 0 {
		l.Coordinates = &model.Coordinate{Lat: lat, Lng: lng}
	}
	if rating := safeFloat(safeGet(biz, 4, 7)); rating > 0 {
		reviews := int(safeFloat(safeGet(biz, 4, 8)))
		l.Rating, l.ReviewCount = &rating, &reviews
	}
	if p, ok := priceLevel(safeString(safeGet(biz, 4, 2))); ok {
		l.PriceLevel = &p
	}
	for _, c := range safeSlice(safeGet(biz, 13)) {
		if s := safeString(c); s != "" {
			l.Categories = append(l.Categories, s)
		}
	}
	l.Hours = parseHours(safeSlice(safeGet(biz, 34, 1)))
	return l, true
}

// address prefers the full address field and falls back to the
// "name, address" line with the name removed.
func address(biz []any, name string) string {
	if a := safeString(safeGet(biz, 39)); a != "" {
		return a
	}
	a := safeString(safeGet(biz, 18))
	return strings.TrimPrefix(a, name+", ")
}

// priceLevel counts the dollar signs of a "$$"-style price.
func priceLevel(s string) (int, bool) {
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if r != '$' {
			break
		}
		n++
	}
	if n == 0 || n > 4 {
		return 0, false
	}
	return n, true
}

func placeURL(placeID string) string {
	if placeID == "" {
		return ""
	}
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

// safeGet navigates nested []any arrays by index path without panicking.
func safeGet(data any, path ...int) any {
	current := data
	for _, idx := range path {
		slice, ok := current.([]any)
		if !ok || idx < 0 || idx >= len(slice) {
			return nil
		}
		current = slice[idx]
	}
	return current
}

func safeSlice(data any) []any {
	slice, _ := data.([]any)
	return slice
}

func safeString(data any) string {
	switch v := data.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func safeFloat(data any) float64 {
	switch v := data.(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}
