package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSlotNotFound      = errors.New("time slot not found")
	ErrSlotAlreadyBooked = errors.New("slot is already booked")
	ErrRequestNotFound   = errors.New("session request not found")
	ErrAlreadyRequested  = errors.New("user already has a pending request for this slot")
	ErrSlotNotBooked     = errors.New("slot is not booked")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSlotByID(ctx context.Context, slotID int) (*BookableSlot, error) {
	query := `
		SELECT id, trainer_id, date, start_time, end_time, is_booked, booked_by, status, created_at
		FROM bookable_slots
		WHERE id = $1
	`

	var slot BookableSlot
	err := r.db.GetContext(ctx, &slot, query, slotID)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetSlotsByTrainer(ctx context.Context, trainerID int) ([]SlotWithRequests, error) {
	query := `
		SELECT id, trainer_id, date, start_time, end_time, is_booked, booked_by, status, created_at
		FROM bookable_slots
		WHERE trainer_id = $1
		ORDER BY date, start_time
	`

	var slots []BookableSlot
	if err := r.db.SelectContext(ctx, &slots, query, trainerID); err != nil {
		return nil, err
	}

	out := make([]SlotWithRequests, 0, len(slots))
	for _, slot := range slots {
		requests, err := r.GetRequestsForSlot(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotWithRequests{BookableSlot: slot, Requests: requests})
	}

	return out, nil
}

func (r *repository) GetRequestsForSlot(ctx context.Context, slotID int) ([]SessionRequest, error) {
	query := `
		SELECT id, slot_id, user_id, status, rejection_reason, requested_at
		FROM session_requests
		WHERE slot_id = $1
		ORDER BY requested_at
	`

	requests := []SessionRequest{}
	err := r.db.SelectContext(ctx, &requests, query, slotID)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// CreateRequest appends a pending request, guarded against booked slots in
// the same statement so two concurrent requests cannot race a booking.
func (r *repository) CreateRequest(ctx context.Context, slotID, userID int) (*SessionRequest, error) {
	query := `
		INSERT INTO session_requests (slot_id, user_id, status)
		SELECT $1, $2, 'pending'
		WHERE EXISTS (
			SELECT 1 FROM bookable_slots
			WHERE id = $1 AND is_booked = FALSE AND status = 'open'
		)
		RETURNING id, slot_id, user_id, status, rejection_reason, requested_at
	`

	var request SessionRequest
	err := r.db.GetContext(ctx, &request, query, slotID, userID)
	if err == nil {
		return &request, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return nil, ErrAlreadyRequested
	}

	if err == sql.ErrNoRows {
		// Either the slot does not exist or it is no longer open.
		slot, slotErr := r.GetSlotByID(ctx, slotID)
		if slotErr != nil {
			return nil, slotErr
		}
		if slot.IsBooked || slot.Status != SlotStatusOpen {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, err
	}

	return nil, err
}

// ApproveRequest applies the whole approval as one transaction: approve
// the matching pending request, claim the slot with a conditional update,
// and auto-reject every sibling pending request. Returns the user ids of
// the auto-rejected requests, plus whether the call changed anything:
// a repeat approval of an already-approved pair reports applied=false so
// the caller does not re-notify.
func (r *repository) ApproveRequest(ctx context.Context, slotID, userID int, autoRejectReason string) ([]int, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE session_requests
		SET status = 'approved', rejection_reason = NULL
		WHERE slot_id = $1 AND user_id = $2 AND status = 'pending'
	`, slotID, userID)
	if err != nil {
		return nil, false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	if rowsAffected == 0 {
		return nil, false, r.classifyApproveConflict(ctx, tx, slotID, userID)
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE bookable_slots
		SET is_booked = TRUE, booked_by = $2, status = 'booked'
		WHERE id = $1 AND is_booked = FALSE
	`, slotID, userID)
	if err != nil {
		return nil, false, err
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if rowsAffected == 0 {
		// Lost the claim race; rollback reverts the approval above.
		return nil, false, ErrSlotAlreadyBooked
	}

	rows, err := tx.QueryContext(ctx, `
		UPDATE session_requests
		SET status = 'rejected', rejection_reason = $3
		WHERE slot_id = $1 AND user_id <> $2 AND status = 'pending'
		RETURNING user_id
	`, slotID, userID, autoRejectReason)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var rejected []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, false, err
		}
		rejected = append(rejected, id)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	return rejected, true, nil
}

// classifyApproveConflict decides why no pending request matched: a repeat
// approval of the same pair is a no-op, a slot claimed by someone else is
// a conflict, anything else is a missing request.
func (r *repository) classifyApproveConflict(ctx context.Context, tx *sqlx.Tx, slotID, userID int) error {
	var status string
	err := tx.GetContext(ctx, &status, `
		SELECT status FROM session_requests
		WHERE slot_id = $1 AND user_id = $2
		ORDER BY requested_at DESC
		LIMIT 1
	`, slotID, userID)
	if err == sql.ErrNoRows {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}

	var slot BookableSlot
	err = tx.GetContext(ctx, &slot, `
		SELECT id, trainer_id, date, start_time, end_time, is_booked, booked_by, status, created_at
		FROM bookable_slots
		WHERE id = $1
	`, slotID)
	if err != nil {
		return err
	}

	if status == RequestStatusApproved && slot.IsBooked && slot.BookedBy != nil && *slot.BookedBy == userID {
		return nil // idempotent repeat
	}
	if slot.IsBooked {
		return ErrSlotAlreadyBooked
	}
	return ErrRequestNotFound
}

func (r *repository) RejectRequest(ctx context.Context, slotID, userID int, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE session_requests
		SET status = 'rejected', rejection_reason = $3
		WHERE slot_id = $1 AND user_id = $2 AND status = 'pending'
	`, slotID, userID, reason)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// ReleaseSlot reverts a booked slot to open, dropping the booked claim and
// marking the approved request rejected with the given reason.
func (r *repository) ReleaseSlot(ctx context.Context, slotID int, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bookable_slots
		SET is_booked = FALSE, booked_by = NULL, status = 'open'
		WHERE id = $1 AND is_booked = TRUE
	`, slotID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSlotNotBooked
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE session_requests
		SET status = 'rejected', rejection_reason = $2
		WHERE slot_id = $1 AND status = 'approved'
	`, slotID, reason)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// CompleteElapsed archives booked slots whose end time has passed.
func (r *repository) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookable_slots
		SET status = 'completed'
		WHERE status = 'booked' AND (date + end_time::time) <= $1
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

// ExpireStale expires open slots past their end time and auto-rejects any
// requests still pending on them.
func (r *repository) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE session_requests
		SET status = 'rejected', rejection_reason = 'slot expired'
		WHERE status = 'pending' AND slot_id IN (
			SELECT id FROM bookable_slots
			WHERE status = 'open' AND (date + end_time::time) <= $1
		)
	`, now)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE bookable_slots
		SET status = 'expired'
		WHERE status = 'open' AND (date + end_time::time) <= $1
	`, now)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}
