// services/lobby_service.go
package services

import (
	"context"
	"errors"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
)

var ErrNoPublicRoom = errors.New("no public room available")

// LobbyService answers room discovery queries against the room store. It is
// read-mostly and deliberately bypasses the per-room engine serialization;
// the join that follows re-validates capacity under the room lock.
type LobbyService struct {
	store persistence.RoomStore
}

func NewLobbyService(store persistence.RoomStore) *LobbyService {
	return &LobbyService{store: store}
}

// FindPublicRoom 快速加入。It picks a joinable room in the requested
// language, preferring one still in the lobby so the player doesn't land
// mid-round.
func (s *LobbyService) FindPublicRoom(ctx context.Context, language models.Language) (string, error) {
	ids, err := s.store.ListRoomIDs(ctx)
	if err != nil {
		return "", err
	}

	language = models.ResolveLanguage(language)
	var fallback string
	for _, id := range ids {
		room, err := s.store.GetRoom(ctx, id)
		if err != nil {
			// Rooms can expire between List and Get.
			continue
		}
		if room.Settings.Language != language {
			continue
		}
		if len(room.Players) == 0 || len(room.Players) >= room.Settings.Players {
			continue
		}
		if room.GameState.RoomState == models.StateNotStarted {
			return room.RoomID, nil
		}
		if fallback == "" {
			fallback = room.RoomID
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoPublicRoom
}

// ListRooms returns a shallow status line per live room.
type RoomSummary struct {
	RoomID   string           `json:"roomId"`
	Players  int              `json:"players"`
	Capacity int              `json:"capacity"`
	State    models.RoomState `json:"state"`
	Round    int              `json:"round"`
	Language models.Language  `json:"language"`
}

func (s *LobbyService) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	ids, err := s.store.ListRoomIDs(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]RoomSummary, 0, len(ids))
	for _, id := range ids {
		room, err := s.store.GetRoom(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, RoomSummary{
			RoomID:   room.RoomID,
			Players:  len(room.Players),
			Capacity: room.Settings.Players,
			State:    room.GameState.RoomState,
			Round:    room.GameState.CurrentRound,
			Language: room.Settings.Language,
		})
	}
	return summaries, nil
}

// PurgeRooms deletes every stored room. Operator tooling only.
func (s *LobbyService) PurgeRooms(ctx context.Context) (int, error) {
	ids, err := s.store.ListRoomIDs(ctx)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, id := range ids {
		if err := s.store.DeleteRoom(ctx, id); err == nil {
			purged++
		}
	}
	return purged, nil
}
