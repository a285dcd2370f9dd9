package booking

import (
	"time"

	"github.com/NijasTp/trainup-sub002/internal/schedule"
)

const (
	SlotStatusOpen      = "open"
	SlotStatusBooked    = "booked"
	SlotStatusCompleted = "completed"
	SlotStatusExpired   = "expired"

	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// JoinWindow is how long before a booked session its join affordance
// becomes available.
const JoinWindow = 10 * time.Minute

type BookableSlot struct {
	ID        int       `db:"id" json:"id"`
	TrainerID int       `db:"trainer_id" json:"trainer_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time" example:"09:00"`
	EndTime   string    `db:"end_time" json:"end_time" example:"10:00"`
	IsBooked  bool      `db:"is_booked" json:"is_booked"`
	BookedBy  *int      `db:"booked_by" json:"booked_by,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SessionRequest struct {
	ID              int       `db:"id" json:"id"`
	SlotID          int       `db:"slot_id" json:"slot_id"`
	UserID          int       `db:"user_id" json:"user_id"`
	Status          string    `db:"status" json:"status"`
	RejectionReason *string   `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RequestedAt     time.Time `db:"requested_at" json:"requested_at"`
}

type SlotWithRequests struct {
	BookableSlot
	Requests []SessionRequest `json:"requested_by"`
}

// StartAt resolves the slot's absolute start instant.
func (s *BookableSlot) StartAt() (time.Time, error) {
	tod, err := schedule.ParseTimeOfDay(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return s.Date.Add(time.Duration(tod.Minutes()) * time.Minute), nil
}

// EndAt resolves the slot's absolute end instant.
func (s *BookableSlot) EndAt() (time.Time, error) {
	tod, err := schedule.ParseTimeOfDay(s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	return s.Date.Add(time.Duration(tod.Minutes()) * time.Minute), nil
}

// CanJoin reports whether the session's join affordance should be shown:
// the slot is booked and now falls within [start - JoinWindow, end].
// Derived at read time, never stored.
func CanJoin(slot *BookableSlot, now time.Time) bool {
	if !slot.IsBooked {
		return false
	}

	start, err := slot.StartAt()
	if err != nil {
		return false
	}
	end, err := slot.EndAt()
	if err != nil {
		return false
	}

	return !now.Before(start.Add(-JoinWindow)) && !now.After(end)
}

type BookSessionRequest struct {
	SlotID int `json:"slot_id" binding:"required"`
}

type RejectRequestBody struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type VideoCallResponse struct {
	VideoCall struct {
		RoomID string `json:"room_id"`
	} `json:"video_call"`
}
