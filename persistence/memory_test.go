package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/models"
)

func newStoredRoom(id string, now time.Time) *models.Room {
	return models.NewRoom(id, "creator", models.LanguageEnglish, now)
}

func TestMemoryStore_SetGetRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	room := newStoredRoom("r1", clock.Now())
	room.Players = append(room.Players, &models.Player{PlayerID: "p1", Name: "Alice", Score: 42})

	if err := store.SetRoom(ctx, room, time.Hour); err != nil {
		t.Fatalf("SetRoom failed: %v", err)
	}

	got, err := store.GetRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if got.RoomID != "r1" || len(got.Players) != 1 || got.Players[0].Score != 42 {
		t.Errorf("Round trip lost data: %+v", got)
	}

	// The stored copy must be isolated from later mutations.
	room.Players[0].Score = 0
	again, err := store.GetRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if again.Players[0].Score != 42 {
		t.Error("Store must hold a snapshot, not a shared pointer")
	}
}

func TestMemoryStore_MissingRoom(t *testing.T) {
	store := NewMemoryStore(clockwork.NewFakeClock())

	if _, err := store.GetRoom(context.Background(), "nope"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	if err := store.SetRoom(ctx, newStoredRoom("r1", clock.Now()), time.Minute); err != nil {
		t.Fatalf("SetRoom failed: %v", err)
	}

	clock.Advance(59 * time.Second)
	if _, err := store.GetRoom(ctx, "r1"); err != nil {
		t.Fatalf("Room expired too early: %v", err)
	}

	clock.Advance(2 * time.Second)
	if _, err := store.GetRoom(ctx, "r1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("Expected expired room to be gone, got %v", err)
	}
}

func TestMemoryStore_RefreshTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	if err := store.SetRoom(ctx, newStoredRoom("r1", clock.Now()), time.Minute); err != nil {
		t.Fatalf("SetRoom failed: %v", err)
	}

	clock.Advance(50 * time.Second)
	if err := store.RefreshRoomTTL(ctx, "r1", time.Minute); err != nil {
		t.Fatalf("RefreshRoomTTL failed: %v", err)
	}

	clock.Advance(50 * time.Second)
	if _, err := store.GetRoom(ctx, "r1"); err != nil {
		t.Errorf("Refreshed room should still be live: %v", err)
	}

	ttl, err := store.RoomTTL(ctx, "r1")
	if err != nil {
		t.Fatalf("RoomTTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("Unexpected TTL %v", ttl)
	}
}

func TestMemoryStore_DeleteAndList(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3"} {
		if err := store.SetRoom(ctx, newStoredRoom(id, clock.Now()), time.Hour); err != nil {
			t.Fatalf("SetRoom failed: %v", err)
		}
	}
	if err := store.DeleteRoom(ctx, "r2"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}

	ids, err := store.ListRoomIDs(ctx)
	if err != nil {
		t.Fatalf("ListRoomIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 rooms, got %v", ids)
	}
	for _, id := range ids {
		if id == "r2" {
			t.Error("Deleted room still listed")
		}
	}
}
