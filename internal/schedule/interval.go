package schedule

import (
	"errors"
	"fmt"
	"time"
)

// All temporal invariants for availability slots live here so the write
// path and any preview endpoint validate against the same rules.

const (
	MaxSlotsPerDay   = 5
	SlotDuration     = time.Hour
	lastBookableHour = 23
)

var (
	ErrIntervalOverlap  = errors.New("slot overlaps an existing slot")
	ErrCapacityExceeded = errors.New("day already has the maximum number of slots")
	ErrPastTime         = errors.New("slot must start after the current time")
	ErrDurationInvalid  = errors.New("slot must be exactly one hour")
	ErrBadTimeFormat    = errors.New("time must be in HH:MM format")
)

// TimeOfDay is minutes since midnight.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, ErrBadTimeFormat
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrBadTimeFormat
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

// Interval is a half-open [Start, End) time-of-day range.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func ParseInterval(startTime, endTime string) (Interval, error) {
	start, err := ParseTimeOfDay(startTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseTimeOfDay(endTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

func (i Interval) IsOneHour() bool {
	return i.End-i.Start == TimeOfDay(SlotDuration.Minutes())
}

// DefaultSlotStart suggests the next whole hour as a new slot start.
// Returns false when a one-hour slot starting there would cross midnight.
func DefaultSlotStart(now time.Time) (TimeOfDay, bool) {
	next := now.Hour() + 1
	if next >= lastBookableHour {
		return 0, false
	}
	return TimeOfDay(next * 60), true
}

// ValidateNewSlot checks a candidate slot against its sibling slots on the
// same day. isToday applies the past-time rule for the current day.
func ValidateNewSlot(candidate Interval, siblings []Interval, isToday bool, now time.Time) error {
	if !candidate.IsOneHour() {
		return ErrDurationInvalid
	}

	if len(siblings) >= MaxSlotsPerDay {
		return ErrCapacityExceeded
	}

	if isToday {
		nowMinutes := TimeOfDay(now.Hour()*60 + now.Minute())
		if candidate.Start <= nowMinutes {
			return ErrPastTime
		}
		if candidate.Start >= TimeOfDay(lastBookableHour*60) {
			return ErrPastTime
		}
	}

	for _, sibling := range siblings {
		if candidate.Overlaps(sibling) {
			return ErrIntervalOverlap
		}
	}

	return nil
}

// FindOverlaps reports index pairs of overlapping intervals. Used by slot
// updates, which tolerate transient conflicts until the schedule is saved.
func FindOverlaps(intervals []Interval) [][2]int {
	var conflicts [][2]int
	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			if intervals[i].Overlaps(intervals[j]) {
				conflicts = append(conflicts, [2]int{i, j})
			}
		}
	}
	return conflicts
}
