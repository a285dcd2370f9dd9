package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func TestGetScheduleNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT day, is_active").
		WithArgs(1, testWeekStart).
		WillReturnRows(sqlmock.NewRows([]string{"day", "is_active"}))

	_, err := repo.GetSchedule(context.Background(), 1, testWeekStart)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestGetSchedule(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	dayRows := sqlmock.NewRows([]string{"day", "is_active"}).
		AddRow("monday", true).
		AddRow("tuesday", false)
	mock.ExpectQuery("SELECT day, is_active").
		WithArgs(1, testWeekStart).
		WillReturnRows(dayRows)

	slotRows := sqlmock.NewRows([]string{"id", "day", "start_time", "end_time"}).
		AddRow("s1", "monday", "09:00", "10:00")
	mock.ExpectQuery("SELECT id, day, start_time, end_time").
		WithArgs(1, testWeekStart).
		WillReturnRows(slotRows)

	sched, err := repo.GetSchedule(context.Background(), 1, testWeekStart)
	require.NoError(t, err)

	assert.True(t, sched.Days[0].IsActive)
	require.Len(t, sched.Days[0].Slots, 1)
	assert.Equal(t, "09:00", sched.Days[0].Slots[0].StartTime)
	assert.False(t, sched.Days[1].IsActive)
}

func TestSaveSchedule(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	sched := NewWeeklySchedule(1, testWeekStart)
	require.NoError(t, sched.SetDayActive("monday", true))
	d, err := sched.day("monday")
	require.NoError(t, err)
	d.Slots = []TimeSlot{{ID: "s1", StartTime: "09:00", EndTime: "10:00"}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM availability_slots").
		WithArgs(1, testWeekStart).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM availability_days").
		WithArgs(1, testWeekStart).
		WillReturnResult(sqlmock.NewResult(0, 0))

	for _, day := range Weekdays {
		mock.ExpectExec("INSERT INTO availability_days").
			WithArgs(1, testWeekStart, day, day == "monday").
			WillReturnResult(sqlmock.NewResult(0, 1))
		if day == "monday" {
			mock.ExpectExec("INSERT INTO availability_slots").
				WithArgs("s1", 1, testWeekStart, "monday", "09:00", "10:00").
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}
	mock.ExpectCommit()

	err = repo.SaveSchedule(context.Background(), sched)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterializeSlotsIdempotent(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	date := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	slots := []DatedSlot{{Date: date, StartTime: "09:00", EndTime: "10:00"}}

	// First run inserts.
	mock.ExpectExec("INSERT INTO bookable_slots").
		WithArgs(1, date, "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.MaterializeSlots(context.Background(), 1, slots)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// Second run hits the conflict and creates nothing.
	mock.ExpectExec("INSERT INTO bookable_slots").
		WithArgs(1, date, "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err = repo.MaterializeSlots(context.Background(), 1, slots)
	require.NoError(t, err)
	assert.Zero(t, created)
}
