package chat

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrEmptyMessage = errors.New("message has no text or file payload")

type Repository interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetRoomHistory(ctx context.Context, roomID string, limit int) ([]Message, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveMessage(ctx context.Context, msg *Message) error {
	if !msg.HasContent() {
		return ErrEmptyMessage
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, room_id, sender_id, sender_role, recipient_id, message_type, text, file_url, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, msg.ID, msg.RoomID, msg.SenderID, msg.SenderRole, msg.RecipientID, msg.MessageType, msg.Text, msg.FileURL, msg.SentAt)

	return err
}

func (r *repository) GetRoomHistory(ctx context.Context, roomID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	messages := []Message{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT id, room_id, sender_id, sender_role, recipient_id, message_type, text, file_url, sent_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}

	// Oldest first for display.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
