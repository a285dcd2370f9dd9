package plan

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("no active plan for this user and trainer")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(ctx context.Context, userID, trainerID int, planType PlanType, messages, videoCalls int, priceCents int64, expiry time.Time) (*UserPlan, error) {
	plan := &UserPlan{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO user_plans (user_id, trainer_id, plan_type, messages_left, video_calls_left, price_cents, status, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
		RETURNING id, user_id, trainer_id, plan_type, messages_left, video_calls_left, price_cents, status, purchased_at, expiry_date
	`, userID, trainerID, planType, messages, videoCalls, priceCents, expiry).StructScan(plan)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *repository) GetActivePlan(ctx context.Context, userID, trainerID int) (*UserPlan, error) {
	plan := &UserPlan{}
	err := r.db.GetContext(ctx, plan, `
		SELECT id, user_id, trainer_id, plan_type, messages_left, video_calls_left, price_cents, status, purchased_at, expiry_date
		FROM user_plans
		WHERE user_id = $1 AND trainer_id = $2 AND status = 'active' AND expiry_date > NOW()
		ORDER BY purchased_at DESC
		LIMIT 1
	`, userID, trainerID)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *repository) ListActiveByUser(ctx context.Context, userID int) ([]*UserPlan, error) {
	plans := []*UserPlan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, user_id, trainer_id, plan_type, messages_left, video_calls_left, price_cents, status, purchased_at, expiry_date
		FROM user_plans
		WHERE user_id = $1 AND status = 'active' AND expiry_date > NOW()
		ORDER BY purchased_at DESC
	`, userID)
	return plans, err
}

// DecrementMessages consumes one message allowance. The counter guard is in
// the statement itself so two concurrent sends cannot both spend the last
// unit; false means the allowance is exhausted.
func (r *repository) DecrementMessages(ctx context.Context, userID, trainerID int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE user_plans
		SET messages_left = messages_left - 1
		WHERE user_id = $1 AND trainer_id = $2
		  AND status = 'active' AND expiry_date > NOW()
		  AND messages_left > 0
	`, userID, trainerID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) DecrementVideoCalls(ctx context.Context, userID, trainerID int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE user_plans
		SET video_calls_left = video_calls_left - 1
		WHERE user_id = $1 AND trainer_id = $2
		  AND status = 'active' AND expiry_date > NOW()
		  AND video_calls_left > 0
	`, userID, trainerID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) CancelPlan(ctx context.Context, userID, trainerID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE user_plans
		SET status = 'cancelled'
		WHERE user_id = $1 AND trainer_id = $2 AND status = 'active'
	`, userID, trainerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPlanNotFound
	}

	return nil
}

func (r *repository) ExpirePlans(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE user_plans
		SET status = 'expired'
		WHERE status = 'active' AND expiry_date <= $1
	`, now)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}
