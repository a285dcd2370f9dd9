package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWeekStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

func testNow() time.Time {
	// Midday on the Wednesday of the test week.
	return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
}

func TestNewWeeklySchedule(t *testing.T) {
	w := NewWeeklySchedule(1, testWeekStart)

	require.Len(t, w.Days, 7)
	for _, d := range w.Days {
		assert.False(t, d.IsActive)
		assert.Empty(t, d.Slots)
	}
	assert.False(t, w.Dirty)
}

func TestSetDayActive(t *testing.T) {
	w := NewWeeklySchedule(1, testWeekStart)

	err := w.SetDayActive("friday", true)
	require.NoError(t, err)
	assert.True(t, w.Dirty)

	t.Run("Deactivating drops slots", func(t *testing.T) {
		require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow()))
		require.NoError(t, w.SetDayActive("friday", false))

		d, err := w.day("friday")
		require.NoError(t, err)
		assert.False(t, d.IsActive)
		assert.Empty(t, d.Slots)
	})

	t.Run("Unknown day", func(t *testing.T) {
		assert.Error(t, w.SetDayActive("caturday", true))
	})
}

func TestAddSlot(t *testing.T) {
	t.Run("Adds and activates the day", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)

		err := w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow())
		require.NoError(t, err)

		d, _ := w.day("friday")
		assert.True(t, d.IsActive)
		require.Len(t, d.Slots, 1)
	})

	t.Run("Rejects overlap", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)
		require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow()))

		err := w.AddSlot("friday", TimeSlot{ID: "s2", StartTime: "09:30", EndTime: "10:30"}, testNow())
		assert.ErrorIs(t, err, ErrIntervalOverlap)
	})

	t.Run("Rejects sixth slot", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)
		starts := []string{"08:00", "09:00", "10:00", "11:00", "12:00"}
		ends := []string{"09:00", "10:00", "11:00", "12:00", "13:00"}
		for i := range starts {
			require.NoError(t, w.AddSlot("friday", TimeSlot{ID: starts[i], StartTime: starts[i], EndTime: ends[i]}, testNow()))
		}

		err := w.AddSlot("friday", TimeSlot{ID: "s6", StartTime: "14:00", EndTime: "15:00"}, testNow())
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("Rejects past start on today", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)

		// testNow is Wednesday 12:00.
		err := w.AddSlot("wednesday", TimeSlot{ID: "s1", StartTime: "11:00", EndTime: "12:00"}, testNow())
		assert.ErrorIs(t, err, ErrPastTime)

		err = w.AddSlot("wednesday", TimeSlot{ID: "s2", StartTime: "13:00", EndTime: "14:00"}, testNow())
		assert.NoError(t, err)
	})

	t.Run("Past weekdays of the week are not blocked", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)

		err := w.AddSlot("monday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow())
		assert.NoError(t, err)
	})
}

func TestRemoveSlot(t *testing.T) {
	w := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow()))

	require.NoError(t, w.RemoveSlot("friday", "s1"))
	d, _ := w.day("friday")
	assert.Empty(t, d.Slots)

	assert.Error(t, w.RemoveSlot("friday", "missing"))
}

func TestUpdateSlotWarnsOnOverlap(t *testing.T) {
	w := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow()))
	require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s2", StartTime: "11:00", EndTime: "12:00"}, testNow()))

	// Dragging s2 onto s1 is allowed but warned.
	warnings, err := w.UpdateSlot("friday", "s2", "start_time", "09:30")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "s1")
	assert.Contains(t, warnings[0], "s2")

	// The lingering conflict blocks a save.
	assert.ErrorIs(t, w.Validate(), ErrIntervalOverlap)

	// Fixing the other end clears both the warning and the save error.
	warnings, err = w.UpdateSlot("friday", "s2", "end_time", "10:30")
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	warnings, err = w.UpdateSlot("friday", "s2", "start_time", "10:00")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	warnings, err = w.UpdateSlot("friday", "s2", "end_time", "11:00")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NoError(t, w.Validate())
}

func TestUpdateSlotErrors(t *testing.T) {
	w := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow()))

	_, err := w.UpdateSlot("friday", "missing", "start_time", "09:00")
	assert.Error(t, err)

	_, err = w.UpdateSlot("friday", "s1", "color", "blue")
	assert.Error(t, err)

	_, err = w.UpdateSlot("friday", "s1", "start_time", "25:00")
	assert.ErrorIs(t, err, ErrBadTimeFormat)
}

func TestValidate(t *testing.T) {
	t.Run("No overlap after valid edits", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)
		require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"}, testNow()))
		require.NoError(t, w.AddSlot("friday", TimeSlot{ID: "s2", StartTime: "10:00", EndTime: "11:00"}, testNow()))

		assert.NoError(t, w.Validate())
	})

	t.Run("Rejects non-hour slot", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)
		require.NoError(t, w.SetDayActive("friday", true))
		d, _ := w.day("friday")
		d.Slots = append(d.Slots, TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "09:30"})

		assert.ErrorIs(t, w.Validate(), ErrDurationInvalid)
	})

	t.Run("Rejects slots on inactive day", func(t *testing.T) {
		w := NewWeeklySchedule(1, testWeekStart)
		d, _ := w.day("friday")
		d.Slots = append(d.Slots, TimeSlot{ID: "s1", StartTime: "09:00", EndTime: "10:00"})

		assert.Error(t, w.Validate())
	})
}
