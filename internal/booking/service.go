package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/logger"
	"github.com/NijasTp/trainup-sub002/internal/metrics"
	"github.com/NijasTp/trainup-sub002/internal/notification"
	"github.com/NijasTp/trainup-sub002/internal/user"

	"github.com/google/uuid"
)

const autoRejectReason = "another request was approved for this slot"

var (
	ErrNotSlotOwner        = errors.New("slot belongs to another trainer")
	ErrEmptyReason         = errors.New("rejection reason must not be empty")
	ErrNotParticipant      = errors.New("user is not a participant of this session")
	ErrJoinWindowClosed    = errors.New("session join window is closed")
	ErrVideoNotInPlan      = errors.New("video calls are not included in this plan")
	ErrVideoQuotaExhausted = errors.New("video call allowance is used up")
)

// Notifier enqueues delivery jobs. Failures are the dispatcher's problem;
// booking transitions never depend on them.
type Notifier interface {
	Enqueue(ctx context.Context, job notification.Job) error
}

// VideoQuota meters joins on the client side. False with a nil error
// means the allowance ran out; an error means the plan forbids video
// calls outright.
type VideoQuota interface {
	DecrementVideoCall(ctx context.Context, userID, trainerID int) (bool, error)
}

type Service interface {
	RequestBooking(ctx context.Context, userID, slotID int) (*SessionRequest, error)
	ApproveRequest(ctx context.Context, trainerID, slotID, userID int) error
	RejectRequest(ctx context.Context, trainerID, slotID, userID int, reason string) error
	CancelBooking(ctx context.Context, callerID, slotID int) error
	GetTrainerSlots(ctx context.Context, trainerID int) ([]SlotWithRequests, error)
	VideoCallRoom(ctx context.Context, callerID, slotID int) (string, error)
	Sweep(ctx context.Context) error
}

type service struct {
	repo     Repository
	notifier Notifier
	quota    VideoQuota
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, quota VideoQuota) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		quota:    quota,
		now:      time.Now,
	}
}

func (s *service) RequestBooking(ctx context.Context, userID, slotID int) (*SessionRequest, error) {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	request, err := s.repo.CreateRequest(ctx, slotID, userID)
	if err != nil {
		return nil, err
	}

	metrics.RecordSessionRequest()
	s.notify(ctx, slot.TrainerID, user.RoleTrainer, notification.TypeSessionRequested, map[string]any{
		"slot_id": slotID,
		"user_id": userID,
	})

	return request, nil
}

func (s *service) ApproveRequest(ctx context.Context, trainerID, slotID, userID int) error {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.TrainerID != trainerID {
		return ErrNotSlotOwner
	}

	rejected, applied, err := s.repo.ApproveRequest(ctx, slotID, userID, autoRejectReason)
	if err != nil {
		return err
	}
	if !applied {
		// Repeat of an already-approved pair: nothing changed, nobody to
		// tell again.
		return nil
	}

	metrics.RecordApproval("approved")
	s.notify(ctx, userID, user.RoleUser, notification.TypeSessionApproved, map[string]any{
		"slot_id":    slotID,
		"trainer_id": trainerID,
	})
	for _, rejectedID := range rejected {
		metrics.RecordApproval("rejected")
		s.notify(ctx, rejectedID, user.RoleUser, notification.TypeSessionRejected, map[string]any{
			"slot_id": slotID,
			"reason":  autoRejectReason,
		})
	}

	return nil
}

func (s *service) RejectRequest(ctx context.Context, trainerID, slotID, userID int, reason string) error {
	if reason == "" {
		return ErrEmptyReason
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.TrainerID != trainerID {
		return ErrNotSlotOwner
	}

	if err := s.repo.RejectRequest(ctx, slotID, userID, reason); err != nil {
		return err
	}

	metrics.RecordApproval("rejected")
	s.notify(ctx, userID, user.RoleUser, notification.TypeSessionRejected, map[string]any{
		"slot_id": slotID,
		"reason":  reason,
	})

	return nil
}

func (s *service) CancelBooking(ctx context.Context, callerID, slotID int) error {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}

	if slot.TrainerID != callerID && (slot.BookedBy == nil || *slot.BookedBy != callerID) {
		return ErrNotParticipant
	}

	bookedBy := slot.BookedBy
	if err := s.repo.ReleaseSlot(ctx, slotID, "booking cancelled"); err != nil {
		return err
	}

	// Notify the counterpart, whichever side cancelled.
	if callerID == slot.TrainerID && bookedBy != nil {
		s.notify(ctx, *bookedBy, user.RoleUser, notification.TypeSessionCancelled, map[string]any{"slot_id": slotID})
	} else {
		s.notify(ctx, slot.TrainerID, user.RoleTrainer, notification.TypeSessionCancelled, map[string]any{"slot_id": slotID})
	}

	return nil
}

func (s *service) GetTrainerSlots(ctx context.Context, trainerID int) ([]SlotWithRequests, error) {
	return s.repo.GetSlotsByTrainer(ctx, trainerID)
}

func (s *service) VideoCallRoom(ctx context.Context, callerID, slotID int) (string, error) {
	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return "", err
	}

	if slot.TrainerID != callerID && (slot.BookedBy == nil || *slot.BookedBy != callerID) {
		return "", ErrNotParticipant
	}

	if !CanJoin(slot, s.now()) {
		return "", ErrJoinWindowClosed
	}

	// The trainer joins free; the booked user's plan is metered.
	if slot.BookedBy != nil && callerID == *slot.BookedBy {
		allowed, err := s.quota.DecrementVideoCall(ctx, callerID, slot.TrainerID)
		if err != nil {
			return "", ErrVideoNotInPlan
		}
		if !allowed {
			return "", ErrVideoQuotaExhausted
		}
	}

	return fmt.Sprintf("slot-%d", slotID), nil
}

// Sweep archives elapsed booked slots and expires stale open ones.
func (s *service) Sweep(ctx context.Context) error {
	now := s.now()

	completed, err := s.repo.CompleteElapsed(ctx, now)
	if err != nil {
		return err
	}

	expired, err := s.repo.ExpireStale(ctx, now)
	if err != nil {
		return err
	}

	if completed > 0 || expired > 0 {
		logger.Info("slot sweep", "completed", completed, "expired", expired)
	}

	return nil
}

func (s *service) notify(ctx context.Context, recipientID int, role, notifType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("failed to marshal notification payload: %v", err)
		return
	}

	job := notification.Job{
		ID:            uuid.NewString(),
		RecipientID:   recipientID,
		RecipientRole: role,
		Type:          notifType,
		Payload:       data,
		Created:       s.now(),
	}

	if err := s.notifier.Enqueue(ctx, job); err != nil {
		logger.Errorf("failed to enqueue notification: %v", err)
	}
}
