package booking

import (
	"context"
	"time"
)

type Repository interface {
	GetSlotByID(ctx context.Context, slotID int) (*BookableSlot, error)
	GetSlotsByTrainer(ctx context.Context, trainerID int) ([]SlotWithRequests, error)
	GetRequestsForSlot(ctx context.Context, slotID int) ([]SessionRequest, error)

	CreateRequest(ctx context.Context, slotID, userID int) (*SessionRequest, error)
	ApproveRequest(ctx context.Context, slotID, userID int, autoRejectReason string) ([]int, bool, error)
	RejectRequest(ctx context.Context, slotID, userID int, reason string) error
	ReleaseSlot(ctx context.Context, slotID int, reason string) error

	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}
