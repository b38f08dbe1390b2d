package similarity

import "github.com/a-deal/gym-finder/internal/model"

const slotMinutes = 30

// HoursOverlap is the Jaccard index of the half-hour slots in which each
// schedule is open across one week.
func HoursOverlap(a, b *model.Hours) (float64, bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return 0, false
	}
	if a.AlwaysOpen && b.AlwaysOpen {
		return 1, true
	}
	both, either := 0, 0
	for m := 0; m < model.MinutesPerWeek; m += slotMinutes {
		oa, ob := a.OpenAt(m), b.OpenAt(m)
		if oa && ob {
			both++
		}
		if oa || ob {
			either++
		}
	}
	if either == 0 {
		return 0, false
	}
	return float64(both) / float64(either), true
}
