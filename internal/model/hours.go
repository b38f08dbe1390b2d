package model

import "time"

const (
	MinutesPerDay  = 24 * 60
	MinutesPerWeek = 7 * MinutesPerDay
)

// Period is one opening interval. Close may fall on a later day, or wrap
// into the next week.
type Period struct {
	Day      time.Weekday `json:"day"`
	OpenMin  int          `json:"open_min"`
	CloseDay time.Weekday `json:"close_day"`
	CloseMin int          `json:"close_min"`
}

// Hours is a weekly opening schedule.
type Hours struct {
	AlwaysOpen bool     `json:"always_open,omitempty"`
	Periods    []Period `json:"periods,omitempty"`
}

// OpenAt reports whether the schedule is open at the given minute of the
// week, counted from Sunday 00:00.
func (h *Hours) OpenAt(minuteOfWeek int) bool {
	if h == nil {
		return false
	}
	if h.AlwaysOpen {
		return true
	}
	m := ((minuteOfWeek % MinutesPerWeek) + MinutesPerWeek) % MinutesPerWeek
	for _, p := range h.Periods {
		start := int(p.Day)*MinutesPerDay + p.OpenMin
		end := int(p.CloseDay)*MinutesPerDay + p.CloseMin
		if end <= start {
			end += MinutesPerWeek
		}
		if (m >= start && m < end) || (m+MinutesPerWeek >= start && m+MinutesPerWeek < end) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the schedule carries no opening information.
func (h *Hours) IsEmpty() bool {
	return h == nil || (!h.AlwaysOpen && len(h.Periods) == 0)
}
