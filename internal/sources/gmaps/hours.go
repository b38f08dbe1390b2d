package gmaps

import (
	"strconv"
	"strings"
	"time"

	"github.com/a-deal/gym-finder/internal/model"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var spaceReplacer = strings.NewReplacer("\u202f", " ", "\u00a0", " ", "\u2009", " ")

// parseHours reads the per-day schedule rows, each shaped like
// ["Monday", ["6 AM–10 PM"]]. Unreadable rows are skipped; nil is returned
// when nothing could be read.
func parseHours(rows []any) *model.Hours {
	h := &model.Hours{}
	allDay := 0
	for _, row := range rows {
		day, ok := weekdays[strings.ToLower(safeString(safeGet(row, 0)))]
		if !ok {
			continue
		}
		for _, v := range safeSlice(safeGet(row, 1)) {
			text := strings.ToLower(strings.TrimSpace(spaceReplacer.Replace(safeString(v))))
			switch {
			case text == "open 24 hours":
				allDay++
				h.Periods = append(h.Periods, model.Period{Day: day, CloseDay: (day + 1) % 7})
			case text == "closed" || text == "":
			default:
				if p, ok := parseRange(day, text); ok {
					h.Periods = append(h.Periods, p)
				}
			}
		}
	}
	if allDay == 7 {
		return &model.Hours{AlwaysOpen: true}
	}
	if h.IsEmpty() {
		return nil
	}
	return h
}

// parseRange reads "6 am–10 pm" or "6:30 am-1 am". A close at or before
// the open time falls on the next day.
func parseRange(day time.Weekday, s string) (model.Period, bool) {
	var parts []string
	for _, sep := range []string{"–", "—", " to ", "-"} {
		if strings.Contains(s, sep) {
			parts = strings.SplitN(s, sep, 2)
			break
		}
	}
	if len(parts) != 2 {
		return model.Period{}, false
	}
	closeMin, closeMeridiem, ok := parseClock(parts[1], "")
	if !ok {
		return model.Period{}, false
	}
	// "9–11 pm" shares the closing meridiem.
	openMin, _, ok := parseClock(parts[0], closeMeridiem)
	if !ok {
		return model.Period{}, false
	}
	closeDay := day
	if closeMin <= openMin {
		closeDay = (day + 1) % 7
	}
	return model.Period{Day: day, OpenMin: openMin, CloseDay: closeDay, CloseMin: closeMin}, true
}

// parseClock converts "6 am", "6:30pm" or "18:00" to minutes after
// midnight. fallback supplies the meridiem when s has none.
func parseClock(s, fallback string) (int, string, bool) {
	s = strings.TrimSpace(s)
	meridiem := ""
	for _, m := range []string{"am", "pm"} {
		if strings.HasSuffix(s, m) {
			meridiem = m
			s = strings.TrimSpace(strings.TrimSuffix(s, m))
			break
		}
	}
	hourPart, minPart, hasMin := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, "", false
	}
	minute := 0
	if hasMin {
		if minute, err = strconv.Atoi(minPart); err != nil || minute < 0 || minute > 59 {
			return 0, "", false
		}
	}
	m := meridiem
	if m == "" {
		m = fallback
	}
	switch m {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}
	if hour < 0 || hour > 24 || (hour == 24 && minute > 0) {
		return 0, "", false
	}
	return (hour*60 + minute) % model.MinutesPerDay, meridiem, true
}
