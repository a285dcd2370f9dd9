package schedule

import "time"

// DatedSlot is one calendar occurrence of a weekly template slot, ready to
// be inserted as a bookable slot.
type DatedSlot struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

// ExpandWeek turns a weekly template into dated slots. Occurrences whose
// start has already passed are skipped, so rolling the same week twice or
// mid-week yields only future slots. Pure so it can be tested without a
// store.
func ExpandWeek(schedule *WeeklySchedule, now time.Time) []DatedSlot {
	var out []DatedSlot
	for _, d := range schedule.Days {
		if !d.IsActive {
			continue
		}

		date := schedule.dateOf(d.Day)
		for _, s := range d.Slots {
			iv, err := s.Interval()
			if err != nil {
				continue
			}

			start := date.Add(time.Duration(iv.Start.Minutes()) * time.Minute)
			if !start.After(now) {
				continue
			}

			out = append(out, DatedSlot{
				Date:      date,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
			})
		}
	}
	return out
}
