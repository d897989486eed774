// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/drawguess/session"
)

var ErrSessionNotFound = errors.New("session not found")

// RoomBroadcaster fans messages out to room subscribers. Membership is
// tracked on the sessions themselves; the authoritative roster lives in the
// room store, so the broadcaster never consults game state.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

func (b *RoomBroadcaster) ToRoom(roomID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoomID(roomID) {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection is cleaned up by its read loop.
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) ToRoomExcept(roomID, exceptID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoomID(roomID) {
		if s.GetID() == exceptID {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) ToPlayer(playerID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(playerID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}

// Evict detaches the connection from its room channel so it receives no
// further room traffic. Used when a player is vote-kicked.
func (b *RoomBroadcaster) Evict(playerID string) {
	if s, exists := b.sessionManager.Get(playerID); exists {
		s.SetRoomID("")
	}
}
