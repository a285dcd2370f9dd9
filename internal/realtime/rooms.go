package realtime

import (
	"fmt"
	"sort"
	"sync"
)

// ChatRoomID is the deterministic room for two participants: the sorted
// pair means both sides compute the same id regardless of who joins first.
func ChatRoomID(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("chat_%d_%d", a, b)
}

// roomSet tracks which clients are in which named room.
type roomSet struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func newRoomSet() *roomSet {
	return &roomSet{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds the client and reports whether the room was empty before,
// which designates the first video-room joiner as the offer initiator.
func (rs *roomSet) Join(roomID string, c *Client) (wasEmpty bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	members, ok := rs.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		rs.rooms[roomID] = members
	}

	wasEmpty = len(members) == 0
	members[c] = struct{}{}
	return wasEmpty
}

func (rs *roomSet) Leave(roomID string, c *Client) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	members, ok := rs.rooms[roomID]
	if !ok {
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(rs.rooms, roomID)
	}
}

// LeaveAll removes the client from every room and returns the room ids it
// was in, so peers can be told about the departure.
func (rs *roomSet) LeaveAll(c *Client) []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var left []string
	for roomID, members := range rs.rooms {
		if _, ok := members[c]; !ok {
			continue
		}
		delete(members, c)
		if len(members) == 0 {
			delete(rs.rooms, roomID)
		}
		left = append(left, roomID)
	}

	sort.Strings(left)
	return left
}

// Broadcast sends to every room member except the sender.
func (rs *roomSet) Broadcast(roomID string, except *Client, event string, data any) {
	rs.mu.RLock()
	members := make([]*Client, 0, len(rs.rooms[roomID]))
	for member := range rs.rooms[roomID] {
		if member != except {
			members = append(members, member)
		}
	}
	rs.mu.RUnlock()

	for _, member := range members {
		member.Send(event, data)
	}
}

func (rs *roomSet) Members(roomID string) int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rooms[roomID])
}
