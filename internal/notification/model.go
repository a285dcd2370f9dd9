package notification

import (
	"encoding/json"
	"time"
)

const (
	TypeSessionRequested = "session_requested"
	TypeSessionApproved  = "session_approved"
	TypeSessionRejected  = "session_rejected"
	TypeSessionCancelled = "session_cancelled"
	TypeSessionReminder  = "session_reminder"
)

// Job is one at-least-once unit of delivery work. ID doubles as the
// idempotency key; the queue collapses duplicate ids.
type Job struct {
	ID            string          `json:"id"`
	RecipientID   int             `json:"recipient_id"`
	RecipientRole string          `json:"recipient_role"`
	Type          string          `json:"type"`
	Payload       json.RawMessage `json:"payload"`
	Delay         time.Duration   `json:"delay,omitempty"`
	Tries         int             `json:"tries"`
	Created       time.Time       `json:"created"`
}

// Notification is the durable record the worker writes before pushing
// live, so offline recipients can pull it later.
type Notification struct {
	ID            int             `db:"id" json:"id"`
	RecipientID   int             `db:"recipient_id" json:"recipient_id"`
	RecipientRole string          `db:"recipient_role" json:"recipient_role"`
	Type          string          `db:"type" json:"type"`
	Payload       json.RawMessage `db:"payload" json:"payload"`
	IsRead        bool            `db:"is_read" json:"is_read"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
