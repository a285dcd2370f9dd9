package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrConnectionClosed = errors.New("connection closed")

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// conn abstracts the gorilla connection so tests can substitute a fake.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is one authenticated socket. All writes go through a single
// goroutine so concurrent broadcasts never interleave frames.
type Client struct {
	UserID int
	Role   string

	// TokenVersion captured at handshake. A later bump (logout-everywhere,
	// ban) makes the session stale and the gateway kicks it mid-stream.
	TokenVersion int

	ws        conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(ws conn, userID int, role string) *Client {
	c := &Client{
		UserID: userID,
		Role:   role,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}

	go c.writeLoop()

	return c
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-ping.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send queues an event for delivery. A full buffer drops the frame rather
// than blocking the broadcaster.
func (c *Client) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrConnectionClosed
	}
}

// ReadEnvelope blocks for the next inbound frame.
func (c *Client) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	return &env, nil
}

func (c *Client) configureRead() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}
