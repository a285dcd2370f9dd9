package schedule

import (
	"context"
	"time"
)

type Repository interface {
	GetSchedule(ctx context.Context, trainerID int, weekStart time.Time) (*WeeklySchedule, error)
	SaveSchedule(ctx context.Context, schedule *WeeklySchedule) error
	MaterializeSlots(ctx context.Context, trainerID int, slots []DatedSlot) (int, error)
}
