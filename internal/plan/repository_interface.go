package plan

import (
	"context"
	"time"
)

type Repository interface {
	CreatePlan(ctx context.Context, userID, trainerID int, planType PlanType, messages, videoCalls int, priceCents int64, expiry time.Time) (*UserPlan, error)
	GetActivePlan(ctx context.Context, userID, trainerID int) (*UserPlan, error)
	ListActiveByUser(ctx context.Context, userID int) ([]*UserPlan, error)
	DecrementMessages(ctx context.Context, userID, trainerID int) (bool, error)
	DecrementVideoCalls(ctx context.Context, userID, trainerID int) (bool, error)
	CancelPlan(ctx context.Context, userID, trainerID int) error
	ExpirePlans(ctx context.Context, now time.Time) (int, error)
}
