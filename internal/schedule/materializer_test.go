package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandWeek(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // Wednesday noon

	w := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, w.AddSlot("monday", TimeSlot{ID: "m1", StartTime: "09:00", EndTime: "10:00"}, now))
	require.NoError(t, w.AddSlot("wednesday", TimeSlot{ID: "w1", StartTime: "15:00", EndTime: "16:00"}, now))
	require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "f1", StartTime: "09:00", EndTime: "10:00"}, now))
	require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "f2", StartTime: "10:00", EndTime: "11:00"}, now))

	dated := ExpandWeek(w, now)

	// Monday 09:00 is already in the past; Wednesday 15:00 and both Friday
	// slots are still ahead.
	require.Len(t, dated, 3)

	wednesday := testWeekStart.AddDate(0, 0, 2)
	friday := testWeekStart.AddDate(0, 0, 4)

	assert.Equal(t, wednesday, dated[0].Date)
	assert.Equal(t, "15:00", dated[0].StartTime)
	assert.Equal(t, friday, dated[1].Date)
	assert.Equal(t, friday, dated[2].Date)
}

func TestExpandWeekSkipsInactiveDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) // before the week

	w := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, w.AddSlot("tuesday", TimeSlot{ID: "t1", StartTime: "09:00", EndTime: "10:00"}, now))
	require.NoError(t, w.SetDayActive("tuesday", false))

	assert.Empty(t, ExpandWeek(w, now))
}

func TestExpandWeekDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	w := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, w.AddSlot("thursday", TimeSlot{ID: "t1", StartTime: "09:00", EndTime: "10:00"}, now))

	first := ExpandWeek(w, now)
	second := ExpandWeek(w, now)

	// Expansion is pure; the storage layer's unique index turns the
	// identical second batch into no-ops.
	assert.Equal(t, first, second)
}
