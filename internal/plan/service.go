package plan

import (
	"context"
	"errors"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/logger"
	"github.com/NijasTp/trainup-sub002/internal/metrics"
)

var (
	ErrFeatureNotAvailable = errors.New("feature is not included in this plan")
	ErrUnknownPlanType     = errors.New("unknown plan type")
)

// Gate is the metering surface the realtime layer consumes. A false return
// with a nil error is the soft "limit reached" condition, not a failure.
type Gate interface {
	DecrementMessage(ctx context.Context, userID, trainerID int) (bool, error)
	DecrementVideoCall(ctx context.Context, userID, trainerID int) (bool, error)
}

type Service interface {
	Gate
	Purchase(ctx context.Context, userID, trainerID int, planType PlanType) (*UserPlan, error)
	GetPlan(ctx context.Context, userID, trainerID int) (*UserPlan, error)
	ListMyPlans(ctx context.Context, userID int) ([]*UserPlan, error)
	Cancel(ctx context.Context, userID, trainerID int) (int64, error)
	Sweep(ctx context.Context) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

var planPrices = map[PlanType]int64{
	PlanBasic:   99900,
	PlanPremium: 249900,
	PlanPro:     499900,
}

func (s *service) Purchase(ctx context.Context, userID, trainerID int, planType PlanType) (*UserPlan, error) {
	price, ok := planPrices[planType]
	if !ok {
		return nil, ErrUnknownPlanType
	}

	messages, videoCalls := 0, 0
	switch planType {
	case PlanPremium:
		messages = PremiumMessages
	case PlanPro:
		videoCalls = ProVideoCalls
	}

	expiry := s.now().AddDate(0, PlanPeriodMonths, 0)
	plan, err := s.repo.CreatePlan(ctx, userID, trainerID, planType, messages, videoCalls, price, expiry)
	if err != nil {
		return nil, err
	}

	logger.Info("plan purchased", "user_id", userID, "trainer_id", trainerID, "plan_type", planType)
	return plan, nil
}

func (s *service) GetPlan(ctx context.Context, userID, trainerID int) (*UserPlan, error) {
	return s.repo.GetActivePlan(ctx, userID, trainerID)
}

func (s *service) ListMyPlans(ctx context.Context, userID int) ([]*UserPlan, error) {
	return s.repo.ListActiveByUser(ctx, userID)
}

// DecrementMessage meters a user-sent chat message. Basic plans forbid
// messaging outright; pro plans message without limit.
func (s *service) DecrementMessage(ctx context.Context, userID, trainerID int) (bool, error) {
	plan, err := s.repo.GetActivePlan(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			metrics.RecordQuotaDenial("message", "no_plan")
		}
		return false, err
	}

	switch plan.PlanType {
	case PlanBasic:
		metrics.RecordQuotaDenial("message", "tier")
		return false, ErrFeatureNotAvailable
	case PlanPro:
		return true, nil
	case PlanPremium:
		allowed, err := s.repo.DecrementMessages(ctx, userID, trainerID)
		if err != nil {
			return false, err
		}
		if !allowed {
			metrics.RecordQuotaDenial("message", "exhausted")
		}
		return allowed, nil
	default:
		return false, ErrUnknownPlanType
	}
}

// DecrementVideoCall meters joining a video call; only pro plans carry a
// video allowance.
func (s *service) DecrementVideoCall(ctx context.Context, userID, trainerID int) (bool, error) {
	plan, err := s.repo.GetActivePlan(ctx, userID, trainerID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			metrics.RecordQuotaDenial("video_call", "no_plan")
		}
		return false, err
	}

	if plan.PlanType != PlanPro {
		metrics.RecordQuotaDenial("video_call", "tier")
		return false, ErrFeatureNotAvailable
	}

	allowed, err := s.repo.DecrementVideoCalls(ctx, userID, trainerID)
	if err != nil {
		return false, err
	}
	if !allowed {
		metrics.RecordQuotaDenial("video_call", "exhausted")
	}
	return allowed, nil
}

// Cancel deactivates the plan and returns the prorated refund in cents.
func (s *service) Cancel(ctx context.Context, userID, trainerID int) (int64, error) {
	plan, err := s.repo.GetActivePlan(ctx, userID, trainerID)
	if err != nil {
		return 0, err
	}

	if err := s.repo.CancelPlan(ctx, userID, trainerID); err != nil {
		return 0, err
	}

	refund := ProratedRefund(plan, s.now())
	logger.Info("plan cancelled", "user_id", userID, "trainer_id", trainerID, "refund_cents", refund)
	return refund, nil
}

// ProratedRefund computes the refund for the unused remainder of the plan
// period, rounded down to whole days.
func ProratedRefund(plan *UserPlan, now time.Time) int64 {
	total := plan.ExpiryDate.Sub(plan.PurchasedAt)
	if total <= 0 {
		return 0
	}

	remaining := plan.ExpiryDate.Sub(now)
	if remaining <= 0 {
		return 0
	}

	totalDays := int64(total.Hours() / 24)
	remainingDays := int64(remaining.Hours() / 24)
	if totalDays == 0 {
		return 0
	}

	return plan.PriceCents * remainingDays / totalDays
}

func (s *service) Sweep(ctx context.Context) error {
	expired, err := s.repo.ExpirePlans(ctx, s.now())
	if err != nil {
		return err
	}

	if expired > 0 {
		logger.Info("plan sweep", "expired", expired)
	}

	return nil
}
