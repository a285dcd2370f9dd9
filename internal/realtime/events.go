package realtime

import (
	"encoding/json"

	"github.com/NijasTp/trainup-sub002/internal/chat"
)

// Inbound event names. The set is closed: anything else is answered with
// an error event and otherwise ignored.
const (
	EventJoinChat           = "join_chat"
	EventSendMessage        = "send_message"
	EventSendMessageTrainer = "send_message_trainer"
	EventTyping             = "typing"
	EventJoinVideoRoom      = "join_video_room"
	EventLeaveVideoRoom     = "leave_video_room"
	EventWebRTCOffer        = "webrtc_offer"
	EventWebRTCAnswer       = "webrtc_answer"
	EventWebRTCICECandidate = "webrtc_ice_candidate"
)

// Outbound event names.
const (
	EventError               = "error"
	EventMessageLimitReached = "message_limit_reached"
	EventNewMessage          = "new_message"
	EventChatHistory         = "chat_history"
	EventRoomJoined          = "room_joined"
	EventUserJoined          = "user_joined"
	EventUserLeft            = "user_left"
	EventUserTyping          = "user_typing"
	EventNotification        = "notification"
)

// Envelope is the wire shape of every socket message, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinChatPayload struct {
	TrainerID int `json:"trainer_id,omitempty"`
	ClientID  int `json:"client_id,omitempty"`
}

type SendMessagePayload struct {
	TrainerID   int    `json:"trainer_id,omitempty"`
	ClientID    int    `json:"client_id,omitempty"`
	Message     string `json:"message,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	FileURL     string `json:"file_url,omitempty"`
}

type TypingPayload struct {
	TrainerID int  `json:"trainer_id,omitempty"`
	ClientID  int  `json:"client_id,omitempty"`
	IsTyping  bool `json:"is_typing"`
}

type VideoRoomPayload struct {
	RoomID string `json:"room_id"`
}

type SignalPayload struct {
	RoomID       string          `json:"room_id"`
	Payload      json.RawMessage `json:"payload"`
	TargetUserID int             `json:"target_user_id,omitempty"`
	SenderID     int             `json:"sender_id,omitempty"`
}

type RoomJoinedPayload struct {
	RoomID      string `json:"room_id"`
	IsInitiator bool   `json:"is_initiator"`
}

type ChatHistoryPayload struct {
	RoomID   string         `json:"room_id"`
	Messages []chat.Message `json:"messages"`
}

type PresencePayload struct {
	RoomID string `json:"room_id"`
	UserID int    `json:"user_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
