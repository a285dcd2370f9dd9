package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrScheduleNotFound = errors.New("weekly schedule not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type dayRow struct {
	Day      string `db:"day"`
	IsActive bool   `db:"is_active"`
}

type slotRow struct {
	ID        string `db:"id"`
	Day       string `db:"day"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

func (r *repository) GetSchedule(ctx context.Context, trainerID int, weekStart time.Time) (*WeeklySchedule, error) {
	var days []dayRow
	err := r.db.SelectContext(ctx, &days, `
		SELECT day, is_active
		FROM availability_days
		WHERE trainer_id = $1 AND week_start = $2
	`, trainerID, weekStart)
	if err != nil {
		return nil, err
	}

	if len(days) == 0 {
		return nil, ErrScheduleNotFound
	}

	var slots []slotRow
	err = r.db.SelectContext(ctx, &slots, `
		SELECT id, day, start_time, end_time
		FROM availability_slots
		WHERE trainer_id = $1 AND week_start = $2
		ORDER BY day, start_time
	`, trainerID, weekStart)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	schedule := NewWeeklySchedule(trainerID, weekStart)
	for _, d := range days {
		for i := range schedule.Days {
			if schedule.Days[i].Day == d.Day {
				schedule.Days[i].IsActive = d.IsActive
			}
		}
	}
	for _, s := range slots {
		for i := range schedule.Days {
			if schedule.Days[i].Day == s.Day {
				schedule.Days[i].Slots = append(schedule.Days[i].Slots, TimeSlot{
					ID:        s.ID,
					StartTime: s.StartTime,
					EndTime:   s.EndTime,
				})
			}
		}
	}

	return schedule, nil
}

// SaveSchedule replaces the stored week in one transaction.
func (r *repository) SaveSchedule(ctx context.Context, schedule *WeeklySchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM availability_slots
		WHERE trainer_id = $1 AND week_start = $2
	`, schedule.TrainerID, schedule.WeekStart)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM availability_days
		WHERE trainer_id = $1 AND week_start = $2
	`, schedule.TrainerID, schedule.WeekStart)
	if err != nil {
		return err
	}

	for _, d := range schedule.Days {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO availability_days (trainer_id, week_start, day, is_active)
			VALUES ($1, $2, $3, $4)
		`, schedule.TrainerID, schedule.WeekStart, d.Day, d.IsActive)
		if err != nil {
			return err
		}

		for _, s := range d.Slots {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO availability_slots (id, trainer_id, week_start, day, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, s.ID, schedule.TrainerID, schedule.WeekStart, d.Day, s.StartTime, s.EndTime)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// MaterializeSlots inserts dated bookable slots. The unique index on
// (trainer_id, date, start_time) makes repeated materialization a no-op.
func (r *repository) MaterializeSlots(ctx context.Context, trainerID int, slots []DatedSlot) (int, error) {
	created := 0
	for _, s := range slots {
		result, err := r.db.ExecContext(ctx, `
			INSERT INTO bookable_slots (trainer_id, date, start_time, end_time, is_booked, status)
			VALUES ($1, $2, $3, $4, FALSE, 'open')
			ON CONFLICT (trainer_id, date, start_time) DO NOTHING
		`, trainerID, s.Date, s.StartTime, s.EndTime)
		if err != nil {
			return created, err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return created, err
		}
		created += int(rowsAffected)
	}

	return created, nil
}
