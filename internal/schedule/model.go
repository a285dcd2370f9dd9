package schedule

import (
	"fmt"
	"time"
)

var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	StartTime string `db:"start_time" json:"start_time" example:"09:00"`
	EndTime   string `db:"end_time" json:"end_time" example:"10:00"`
}

func (s TimeSlot) Interval() (Interval, error) {
	return ParseInterval(s.StartTime, s.EndTime)
}

type DayAvailability struct {
	Day      string     `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	IsActive bool       `json:"is_active"`
	Slots    []TimeSlot `json:"slots" validate:"max=5"`
}

// WeeklySchedule is a trainer's editable weekly template. Edits mark it
// dirty; Save re-validates every day before committing.
type WeeklySchedule struct {
	TrainerID int               `json:"trainer_id"`
	WeekStart time.Time         `json:"week_start"`
	Days      []DayAvailability `json:"days"`
	Dirty     bool              `json:"-"`
}

func NewWeeklySchedule(trainerID int, weekStart time.Time) *WeeklySchedule {
	days := make([]DayAvailability, len(Weekdays))
	for i, d := range Weekdays {
		days[i] = DayAvailability{Day: d, IsActive: false, Slots: []TimeSlot{}}
	}
	return &WeeklySchedule{
		TrainerID: trainerID,
		WeekStart: weekStart,
		Days:      days,
	}
}

func (w *WeeklySchedule) day(day string) (*DayAvailability, error) {
	for i := range w.Days {
		if w.Days[i].Day == day {
			return &w.Days[i], nil
		}
	}
	return nil, fmt.Errorf("unknown weekday %q", day)
}

// SetDayActive toggles a day. Deactivating a day drops its slots, keeping
// the inactive-implies-empty invariant.
func (w *WeeklySchedule) SetDayActive(day string, active bool) error {
	d, err := w.day(day)
	if err != nil {
		return err
	}
	d.IsActive = active
	if !active {
		d.Slots = []TimeSlot{}
	}
	w.Dirty = true
	return nil
}

// AddSlot validates the candidate against all interval invariants before
// appending it.
func (w *WeeklySchedule) AddSlot(day string, slot TimeSlot, now time.Time) error {
	d, err := w.day(day)
	if err != nil {
		return err
	}

	candidate, err := slot.Interval()
	if err != nil {
		return err
	}

	siblings := make([]Interval, 0, len(d.Slots))
	for _, s := range d.Slots {
		iv, err := s.Interval()
		if err != nil {
			return err
		}
		siblings = append(siblings, iv)
	}

	isToday := w.dateOf(day).Equal(dateOnly(now))
	if err := ValidateNewSlot(candidate, siblings, isToday, now); err != nil {
		return err
	}

	d.IsActive = true
	d.Slots = append(d.Slots, slot)
	w.Dirty = true
	return nil
}

func (w *WeeklySchedule) RemoveSlot(day, slotID string) error {
	d, err := w.day(day)
	if err != nil {
		return err
	}

	for i, s := range d.Slots {
		if s.ID == slotID {
			d.Slots = append(d.Slots[:i], d.Slots[i+1:]...)
			w.Dirty = true
			return nil
		}
	}
	return fmt.Errorf("slot %s not found on %s", slotID, day)
}

// UpdateSlot changes one endpoint of a slot. Overlap with siblings is
// reported as warnings rather than rejected so both ends of a conflicting
// pair can be edited before saving; Save still rejects lingering conflicts.
func (w *WeeklySchedule) UpdateSlot(day, slotID, field, value string) ([]string, error) {
	d, err := w.day(day)
	if err != nil {
		return nil, err
	}

	var target *TimeSlot
	for i := range d.Slots {
		if d.Slots[i].ID == slotID {
			target = &d.Slots[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("slot %s not found on %s", slotID, day)
	}

	if _, err := ParseTimeOfDay(value); err != nil {
		return nil, err
	}

	switch field {
	case "start_time":
		target.StartTime = value
	case "end_time":
		target.EndTime = value
	default:
		return nil, fmt.Errorf("unknown slot field %q", field)
	}
	w.Dirty = true

	intervals := make([]Interval, 0, len(d.Slots))
	for _, s := range d.Slots {
		iv, err := s.Interval()
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}

	var warnings []string
	for _, pair := range FindOverlaps(intervals) {
		warnings = append(warnings, fmt.Sprintf(
			"%s: slot %s overlaps slot %s",
			day, d.Slots[pair[0]].ID, d.Slots[pair[1]].ID,
		))
	}

	return warnings, nil
}

// Validate re-checks every invariant across the whole week. Called before
// any save commits.
func (w *WeeklySchedule) Validate() error {
	for _, d := range w.Days {
		if !d.IsActive {
			if len(d.Slots) > 0 {
				return fmt.Errorf("%s: inactive day has slots", d.Day)
			}
			continue
		}

		if len(d.Slots) > MaxSlotsPerDay {
			return ErrCapacityExceeded
		}

		intervals := make([]Interval, 0, len(d.Slots))
		for _, s := range d.Slots {
			iv, err := s.Interval()
			if err != nil {
				return fmt.Errorf("%s: %w", d.Day, err)
			}
			if !iv.IsOneHour() {
				return ErrDurationInvalid
			}
			intervals = append(intervals, iv)
		}

		if len(FindOverlaps(intervals)) > 0 {
			return ErrIntervalOverlap
		}
	}
	return nil
}

// dateOf maps a weekday name to its calendar date within the week.
func (w *WeeklySchedule) dateOf(day string) time.Time {
	for i, d := range Weekdays {
		if d == day {
			return dateOnly(w.WeekStart).AddDate(0, 0, i)
		}
	}
	return time.Time{}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type SaveScheduleRequest struct {
	WeekStart time.Time         `json:"week_start" binding:"required"`
	Schedule  []DayAvailability `json:"schedule" binding:"required"`
}

type SaveScheduleResponse struct {
	Schedule *WeeklySchedule `json:"schedule"`
	Warnings []string        `json:"warnings,omitempty"`
}
