package plan

import "time"

type PlanType string

const (
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
	PlanPro     PlanType = "pro"

	StatusActive  = "active"
	StatusExpired = "expired"
)

// UserPlan is the metering row for one (user, trainer) subscription.
// Counters only ever decrease; a new purchase creates a fresh row.
type UserPlan struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	TrainerID      int       `db:"trainer_id" json:"trainer_id"`
	PlanType       PlanType  `db:"plan_type" json:"plan_type"`
	MessagesLeft   int       `db:"messages_left" json:"messages_left"`
	VideoCallsLeft int       `db:"video_calls_left" json:"video_calls_left"`
	PriceCents     int64     `db:"price_cents" json:"price_cents"`
	Status         string    `db:"status" json:"status"`
	PurchasedAt    time.Time `db:"purchased_at" json:"purchased_at"`
	ExpiryDate     time.Time `db:"expiry_date" json:"expiry_date"`
}

// Default allowances per tier for a monthly purchase.
const (
	PremiumMessages  = 200
	ProVideoCalls    = 8
	PlanPeriodMonths = 1
)

type PurchasePlanRequest struct {
	TrainerID int      `json:"trainer_id" binding:"required"`
	PlanType  PlanType `json:"plan_type" binding:"required"`
}
