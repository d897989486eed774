package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
)

func seedRoom(t *testing.T, store persistence.RoomStore, id string, players int, state models.RoomState, language models.Language) {
	t.Helper()
	room := models.NewRoom(id, "creator", language, time.Now())
	for i := 0; i < players; i++ {
		room.Players = append(room.Players, &models.Player{PlayerID: id + "-p", Name: "P"})
	}
	room.GameState.RoomState = state
	if err := store.SetRoom(context.Background(), room, time.Hour); err != nil {
		t.Fatalf("SetRoom failed: %v", err)
	}
}

func TestFindPublicRoom_PrefersLobbyRooms(t *testing.T) {
	store := persistence.NewMemoryStore(clockwork.NewRealClock())
	s := NewLobbyService(store)

	seedRoom(t, store, "playing", 3, models.StateDrawing, models.LanguageEnglish)
	seedRoom(t, store, "waiting", 3, models.StateNotStarted, models.LanguageEnglish)

	got, err := s.FindPublicRoom(context.Background(), models.LanguageEnglish)
	if err != nil {
		t.Fatalf("FindPublicRoom failed: %v", err)
	}
	if got != "waiting" {
		t.Errorf("Expected the lobby room, got %s", got)
	}
}

func TestFindPublicRoom_FallsBackToRunningGame(t *testing.T) {
	store := persistence.NewMemoryStore(clockwork.NewRealClock())
	s := NewLobbyService(store)

	seedRoom(t, store, "playing", 3, models.StateDrawing, models.LanguageEnglish)

	got, err := s.FindPublicRoom(context.Background(), models.LanguageEnglish)
	if err != nil {
		t.Fatalf("FindPublicRoom failed: %v", err)
	}
	if got != "playing" {
		t.Errorf("Expected the running room as fallback, got %s", got)
	}
}

func TestFindPublicRoom_SkipsFullEmptyAndForeign(t *testing.T) {
	store := persistence.NewMemoryStore(clockwork.NewRealClock())
	s := NewLobbyService(store)

	seedRoom(t, store, "empty", 0, models.StateNotStarted, models.LanguageEnglish)
	seedRoom(t, store, "full", models.MaxRoomPlayers, models.StateNotStarted, models.LanguageEnglish)
	seedRoom(t, store, "amharic", 2, models.StateNotStarted, models.LanguageAmharic)

	_, err := s.FindPublicRoom(context.Background(), models.LanguageEnglish)
	if !errors.Is(err, ErrNoPublicRoom) {
		t.Fatalf("Expected ErrNoPublicRoom, got %v", err)
	}
}

func TestListRooms(t *testing.T) {
	store := persistence.NewMemoryStore(clockwork.NewRealClock())
	s := NewLobbyService(store)

	seedRoom(t, store, "a", 2, models.StateNotStarted, models.LanguageEnglish)
	seedRoom(t, store, "b", 4, models.StateDrawing, models.LanguageAmharic)

	rooms, err := s.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(rooms))
	}
	for _, r := range rooms {
		if r.Capacity != models.MaxRoomPlayers {
			t.Errorf("Unexpected capacity for %s: %d", r.RoomID, r.Capacity)
		}
	}
}

func TestPurgeRooms(t *testing.T) {
	store := persistence.NewMemoryStore(clockwork.NewRealClock())
	s := NewLobbyService(store)

	seedRoom(t, store, "a", 2, models.StateNotStarted, models.LanguageEnglish)
	seedRoom(t, store, "b", 2, models.StateNotStarted, models.LanguageEnglish)

	purged, err := s.PurgeRooms(context.Background())
	if err != nil {
		t.Fatalf("PurgeRooms failed: %v", err)
	}
	if purged != 2 {
		t.Errorf("Expected 2 purged rooms, got %d", purged)
	}

	ids, err := store.ListRoomIDs(context.Background())
	if err != nil {
		t.Fatalf("ListRoomIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected empty store after purge, got %v", ids)
	}
}
