package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(d time.Weekday, hour, minute int) int {
	return int(d)*MinutesPerDay + hour*60 + minute
}

func TestHoursOpenAt(t *testing.T) {
	h := &Hours{Periods: []Period{
		{Day: time.Monday, OpenMin: 6 * 60, CloseDay: time.Monday, CloseMin: 22 * 60},
		{Day: time.Friday, OpenMin: 22 * 60, CloseDay: time.Saturday, CloseMin: 2 * 60},
		{Day: time.Saturday, OpenMin: 23 * 60, CloseDay: time.Sunday, CloseMin: 60},
	}}

	assert.True(t, h.OpenAt(at(time.Monday, 6, 0)))
	assert.False(t, h.OpenAt(at(time.Monday, 22, 0)))
	assert.False(t, h.OpenAt(at(time.Tuesday, 12, 0)))
	assert.True(t, h.OpenAt(at(time.Saturday, 1, 30)))
	assert.True(t, h.OpenAt(at(time.Sunday, 0, 30)))
	assert.False(t, h.OpenAt(at(time.Sunday, 1, 0)))
	assert.True(t, h.OpenAt(at(time.Sunday, 0, 30)+MinutesPerWeek))
}

func TestHoursEmpty(t *testing.T) {
	var nilHours *Hours
	assert.True(t, nilHours.IsEmpty())
	assert.False(t, nilHours.OpenAt(0))
	assert.True(t, (&Hours{}).IsEmpty())
	assert.False(t, (&Hours{AlwaysOpen: true}).IsEmpty())
	assert.True(t, (&Hours{AlwaysOpen: true}).OpenAt(12345))
}

func TestStandalone(t *testing.T) {
	r := RawListing{ID: "yelp#0", Source: "yelp", URL: "https://yelp.com/biz/x", Listing: Listing{Name: "X", Categories: []string{"gym"}}}
	m := Standalone(r)
	assert.Equal(t, []SourceID{"yelp"}, m.Sources)
	assert.Equal(t, []string{"yelp#0"}, m.Members)
	assert.Nil(t, m.MatchConfidence)
	assert.False(t, m.IsMerged())
	assert.True(t, m.HasSource("yelp"))
	assert.Equal(t, "https://yelp.com/biz/x", m.Links["yelp"])

	m.Categories[0] = "changed"
	assert.Equal(t, "gym", r.Categories[0])
}
