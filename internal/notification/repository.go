package notification

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	ListForRecipient(ctx context.Context, recipientID int, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id, recipientID int) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, n *Notification) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO notifications (recipient_id, recipient_role, type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, n.RecipientID, n.RecipientRole, n.Type, n.Payload).Scan(&n.ID, &n.CreatedAt)
}

func (r *repository) ListForRecipient(ctx context.Context, recipientID int, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, recipient_id, recipient_role, type, payload, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	notifications := []Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, recipientID)
	return notifications, err
}

func (r *repository) MarkRead(ctx context.Context, id, recipientID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
	`, id, recipientID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}
