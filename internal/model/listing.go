package model

import "github.com/paulmach/orb"

// SourceID identifies the provider a listing was fetched from.
type SourceID string

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the coordinate as an orb point (lng, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Listing holds the descriptive fields shared by raw and merged records.
// Optional values are nil pointers or empty strings when the source did not
// provide them.
type Listing struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Phone       string      `json:"phone,omitempty"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
	Website     string      `json:"website,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	ReviewCount *int        `json:"review_count,omitempty"`
	PriceLevel  *int        `json:"price_level,omitempty"` // 0 (free) .. 4
	Hours       *Hours      `json:"hours,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
}

// RawListing is a listing as returned by one source. Never mutated after fetch.
type RawListing struct {
	ID     string   `json:"id"`
	Source SourceID `json:"source"`
	URL    string   `json:"url,omitempty"` // listing page on the provider
	Listing
}

// MergedListing is the fusion of one or more raw listings judged to be the
// same business. A single-source record is a pass-through and carries a nil
// MatchConfidence.
type MergedListing struct {
	Listing
	Sources         []SourceID          `json:"sources"`
	Members         []string            `json:"members"`
	Links           map[SourceID]string `json:"links,omitempty"`
	MatchConfidence *float64            `json:"match_confidence"`
	Region          string              `json:"region"`
	AlsoFoundIn     []string            `json:"also_found_in,omitempty"`
}

// Standalone lifts a raw listing into a single-source merged record.
func Standalone(r RawListing) MergedListing {
	m := MergedListing{
		Listing: r.Listing,
		Sources: []SourceID{r.Source},
		Members: []string{r.ID},
	}
	m.Categories = append([]string(nil), r.Categories...)
	if r.URL != "" {
		m.Links = map[SourceID]string{r.Source: r.URL}
	}
	return m
}

// IsMerged reports whether more than one source contributed to the record.
func (m MergedListing) IsMerged() bool {
	return len(m.Sources) > 1
}

// HasSource reports whether the source contributed to the record.
func (m MergedListing) HasSource(id SourceID) bool {
	for _, s := range m.Sources {
		if s == id {
			return true
		}
	}
	return false
}

// NormalizedListing is the comparable form of a listing's free-text fields.
type NormalizedListing struct {
	Name       string
	NameTokens []string
	Address    string
	Phone      string
	Domain     string
}

// MatchResult is the outcome of comparing two listings. Signals only holds
// signals that were informative for the pair. Defined is false when none of
// them carried weight, in which case Confidence is meaningless.
type MatchResult struct {
	Signals    map[string]float64 `json:"signals"`
	Confidence float64            `json:"confidence"`
	Defined    bool               `json:"defined"`
}

// Signal returns a signal value and whether it was informative.
func (r MatchResult) Signal(name string) (float64, bool) {
	v, ok := r.Signals[name]
	return v, ok
}
