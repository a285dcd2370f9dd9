package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanJoin(t *testing.T) {
	date := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	bookedBy := 42
	slot := &BookableSlot{
		ID:        1,
		TrainerID: 7,
		Date:      date,
		StartTime: "14:00",
		EndTime:   "15:00",
		IsBooked:  true,
		BookedBy:  &bookedBy,
		Status:    SlotStatusBooked,
	}

	at := func(hour, min int) time.Time {
		return time.Date(2026, 3, 6, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"Nine minutes before start", at(13, 51), true},
		{"One minute before end", at(14, 59), true},
		{"During the session", at(14, 30), true},
		{"Exactly at window open", at(13, 50), true},
		{"Exactly at end", at(15, 0), true},
		{"Eleven minutes before start", at(13, 49), false},
		{"After end", at(15, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanJoin(slot, tt.now))
		})
	}
}

func TestCanJoinUnbooked(t *testing.T) {
	slot := &BookableSlot{
		Date:      time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		StartTime: "14:00",
		EndTime:   "15:00",
		IsBooked:  false,
		Status:    SlotStatusOpen,
	}

	now := time.Date(2026, 3, 6, 14, 30, 0, 0, time.UTC)
	assert.False(t, CanJoin(slot, now))
}

func TestSlotStartEndAt(t *testing.T) {
	slot := &BookableSlot{
		Date:      time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "10:00",
	}

	start, err := slot.StartAt()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC), start)

	end, err := slot.EndAt()
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC), end)
}
