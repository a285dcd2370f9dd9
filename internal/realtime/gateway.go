package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NijasTp/trainup-sub002/internal/auth"
	"github.com/NijasTp/trainup-sub002/internal/chat"
	"github.com/NijasTp/trainup-sub002/internal/logger"
	"github.com/NijasTp/trainup-sub002/internal/metrics"
	"github.com/NijasTp/trainup-sub002/internal/user"

	"github.com/google/uuid"
)

var ErrAuthenticationFailed = errors.New("socket authentication failed")

// Accounts resolves the account behind a token so the handshake can check
// the ban flag and stored token version.
type Accounts interface {
	GetByID(ctx context.Context, userID int) (*user.User, error)
}

// Quota meters user-sent chat traffic. False with a nil error is the soft
// limit-reached condition.
type Quota interface {
	DecrementMessage(ctx context.Context, userID, trainerID int) (bool, error)
}

// Messages persists chat lines before they are broadcast and serves
// room history on join.
type Messages interface {
	SaveMessage(ctx context.Context, msg *chat.Message) error
	GetRoomHistory(ctx context.Context, roomID string, limit int) ([]chat.Message, error)
}

type Gateway struct {
	registry   *Registry
	chatRooms  *roomSet
	videoRooms *roomSet

	accounts  Accounts
	quota     Quota
	messages  Messages
	jwtSecret string
	now       func() time.Time
}

func NewGateway(accounts Accounts, quota Quota, messages Messages, jwtSecret string) *Gateway {
	return &Gateway{
		registry:   NewRegistry(),
		chatRooms:  newRoomSet(),
		videoRooms: newRoomSet(),
		accounts:   accounts,
		quota:      quota,
		messages:   messages,
		jwtSecret:  jwtSecret,
		now:        time.Now,
	}
}

// Registry exposes the personal-channel push surface for the notification
// worker.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Authenticate runs the handshake checks: a valid access token whose
// embedded version still matches the account, and no ban. A stale version
// means logout-everywhere or a password change invalidated the session.
func (g *Gateway) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := auth.ValidateToken(token, g.jwtSecret)
	if err != nil || claims.TokenType != "access" {
		return nil, ErrAuthenticationFailed
	}

	account, err := g.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	if account.IsBanned || account.TokenVersion != claims.TokenVersion {
		return nil, ErrAuthenticationFailed
	}

	return account, nil
}

// ServeClient is the per-connection read loop. The connection gets its
// own context, detached from the upgrade request: net/http cancels the
// request context as soon as the handler returns, long before the socket
// closes. It returns when the socket closes; cleanup notifies any video
// rooms the client was still in.
func (g *Gateway) ServeClient(c *Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g.registry.Add(c)
	c.configureRead()

	defer func() {
		g.registry.Remove(c)
		g.chatRooms.LeaveAll(c)
		for _, roomID := range g.videoRooms.LeaveAll(c) {
			g.videoRooms.Broadcast(roomID, c, EventUserLeft, PresencePayload{RoomID: roomID, UserID: c.UserID})
		}
		c.Close()
	}()

	for {
		env, err := c.ReadEnvelope()
		if err != nil {
			return
		}

		g.dispatch(ctx, c, env)
	}
}

func (g *Gateway) dispatch(ctx context.Context, c *Client, env *Envelope) {
	switch env.Event {
	case EventJoinChat:
		g.handleJoinChat(ctx, c, env.Data)
	case EventSendMessage:
		if !g.sessionStillValid(ctx, c) {
			return
		}
		g.handleSendMessage(ctx, c, env.Data)
	case EventSendMessageTrainer:
		if !g.sessionStillValid(ctx, c) {
			return
		}
		g.handleSendMessageTrainer(ctx, c, env.Data)
	case EventTyping:
		g.handleTyping(c, env.Data)
	case EventJoinVideoRoom:
		if !g.sessionStillValid(ctx, c) {
			return
		}
		g.handleJoinVideoRoom(c, env.Data)
	case EventLeaveVideoRoom:
		g.handleLeaveVideoRoom(c, env.Data)
	case EventWebRTCOffer, EventWebRTCAnswer, EventWebRTCICECandidate:
		g.handleSignal(c, env.Event, env.Data)
	default:
		c.Send(EventError, ErrorPayload{Message: "unknown event: " + env.Event})
	}
}

// sessionStillValid re-runs the handshake checks before events that hit
// storage. A ban or token-version bump after connect kicks the socket
// instead of letting it keep chatting until it hangs up.
func (g *Gateway) sessionStillValid(ctx context.Context, c *Client) bool {
	account, err := g.accounts.GetByID(ctx, c.UserID)
	if err != nil || account.IsBanned || account.TokenVersion != c.TokenVersion {
		logger.Infof("Kicking revoked session: user %d", c.UserID)
		c.Send(EventError, ErrorPayload{Message: "session revoked"})
		c.Close()
		return false
	}
	return true
}

func (g *Gateway) handleJoinChat(ctx context.Context, c *Client, data json.RawMessage) {
	var payload JoinChatPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.Send(EventError, ErrorPayload{Message: "malformed join_chat payload"})
		return
	}

	counterpart := payload.TrainerID
	if counterpart == 0 {
		counterpart = payload.ClientID
	}
	if counterpart == 0 {
		c.Send(EventError, ErrorPayload{Message: "a counterpart id is required"})
		return
	}

	roomID := ChatRoomID(c.UserID, counterpart)
	g.chatRooms.Join(roomID, c)
	c.Send(EventRoomJoined, RoomJoinedPayload{RoomID: roomID})

	history, err := g.messages.GetRoomHistory(ctx, roomID, 0)
	if err != nil {
		logger.Errorf("Failed to load chat history for %s: %v", roomID, err)
		return
	}
	c.Send(EventChatHistory, ChatHistoryPayload{RoomID: roomID, Messages: history})
}

// handleSendMessage is the metered, user-initiated side. Quota exhaustion
// is a distinguished event so the client can prompt an upgrade; a tier
// that forbids messaging is a plain error.
func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.TrainerID == 0 {
		c.Send(EventError, ErrorPayload{Message: "malformed send_message payload"})
		return
	}
	if payload.Message == "" && payload.FileURL == "" {
		c.Send(EventError, ErrorPayload{Message: "message text or file is required"})
		return
	}

	allowed, err := g.quota.DecrementMessage(ctx, c.UserID, payload.TrainerID)
	if err != nil {
		c.Send(EventError, ErrorPayload{Message: "messaging is not available on your plan"})
		return
	}
	if !allowed {
		c.Send(EventMessageLimitReached, ErrorPayload{Message: "message limit reached"})
		return
	}

	g.persistAndBroadcast(ctx, c, payload.TrainerID, payload)
}

// handleSendMessageTrainer mirrors send_message from the trainer side,
// without quota gating.
func (g *Gateway) handleSendMessageTrainer(ctx context.Context, c *Client, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ClientID == 0 {
		c.Send(EventError, ErrorPayload{Message: "malformed send_message_trainer payload"})
		return
	}
	if payload.Message == "" && payload.FileURL == "" {
		c.Send(EventError, ErrorPayload{Message: "message text or file is required"})
		return
	}

	g.persistAndBroadcast(ctx, c, payload.ClientID, payload)
}

// persistAndBroadcast writes the durable record first; room delivery order
// therefore equals persistence order.
func (g *Gateway) persistAndBroadcast(ctx context.Context, c *Client, recipientID int, payload SendMessagePayload) {
	messageType := payload.MessageType
	if messageType == "" {
		if payload.FileURL != "" {
			messageType = chat.MessageTypeFile
		} else {
			messageType = chat.MessageTypeText
		}
	}

	msg := &chat.Message{
		ID:          uuid.NewString(),
		RoomID:      ChatRoomID(c.UserID, recipientID),
		SenderID:    c.UserID,
		SenderRole:  c.Role,
		RecipientID: recipientID,
		MessageType: messageType,
		Text:        payload.Message,
		FileURL:     payload.FileURL,
		SentAt:      g.now(),
	}

	if err := g.messages.SaveMessage(ctx, msg); err != nil {
		logger.Errorf("Failed to persist chat message: %v", err)
		c.Send(EventError, ErrorPayload{Message: "failed to send message"})
		return
	}

	metrics.RecordChatMessage(c.Role)
	g.chatRooms.Broadcast(msg.RoomID, nil, EventNewMessage, msg)
}

func (g *Gateway) handleTyping(c *Client, data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	counterpart := payload.TrainerID
	if counterpart == 0 {
		counterpart = payload.ClientID
	}
	if counterpart == 0 {
		return
	}

	// Ephemeral: never persisted.
	roomID := ChatRoomID(c.UserID, counterpart)
	g.chatRooms.Broadcast(roomID, c, EventUserTyping, map[string]any{
		"room_id":   roomID,
		"user_id":   c.UserID,
		"is_typing": payload.IsTyping,
	})
}

func (g *Gateway) handleJoinVideoRoom(c *Client, data json.RawMessage) {
	var payload VideoRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		c.Send(EventError, ErrorPayload{Message: "room_id is required"})
		return
	}

	wasEmpty := g.videoRooms.Join(payload.RoomID, c)

	// The first joiner creates the WebRTC offer.
	c.Send(EventRoomJoined, RoomJoinedPayload{RoomID: payload.RoomID, IsInitiator: wasEmpty})
	g.videoRooms.Broadcast(payload.RoomID, c, EventUserJoined, PresencePayload{RoomID: payload.RoomID, UserID: c.UserID})
}

func (g *Gateway) handleLeaveVideoRoom(c *Client, data json.RawMessage) {
	var payload VideoRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	g.videoRooms.Leave(payload.RoomID, c)
	g.videoRooms.Broadcast(payload.RoomID, c, EventUserLeft, PresencePayload{RoomID: payload.RoomID, UserID: c.UserID})
}

// handleSignal relays WebRTC signaling verbatim, tagged with the sender id.
// Payloads are never inspected or stored.
func (g *Gateway) handleSignal(c *Client, event string, data json.RawMessage) {
	var payload SignalPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		c.Send(EventError, ErrorPayload{Message: "malformed signaling payload"})
		return
	}

	payload.SenderID = c.UserID
	g.videoRooms.Broadcast(payload.RoomID, c, event, payload)
}
