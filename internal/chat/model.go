package chat

import "time"

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

// Message is one persisted chat line. RoomID is the deterministic sorted
// pair of the two participants, so both sides resolve the same history.
type Message struct {
	ID          string    `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	SenderID    int       `db:"sender_id" json:"sender_id"`
	SenderRole  string    `db:"sender_role" json:"sender_role"`
	RecipientID int       `db:"recipient_id" json:"recipient_id"`
	MessageType string    `db:"message_type" json:"message_type"`
	Text        string    `db:"text" json:"text,omitempty"`
	FileURL     string    `db:"file_url" json:"file_url,omitempty"`
	SentAt      time.Time `db:"sent_at" json:"sent_at"`
}

// HasContent reports whether the message carries anything deliverable.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.FileURL != ""
}
