// persistence/memory.go
package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/models"
)

// MemoryStore is an in-process RoomStore with lazy TTL eviction. It backs
// tests and single-node deployments that don't need durability.
type MemoryStore struct {
	clock clockwork.Clock
	mutex sync.RWMutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock: clock,
		items: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) live(roomID string) (memoryEntry, bool) {
	entry, exists := s.items[roomID]
	if !exists {
		return memoryEntry{}, false
	}
	if !s.clock.Now().Before(entry.expiresAt) {
		return memoryEntry{}, false
	}
	return entry, true
}

func (s *MemoryStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	s.mutex.RLock()
	entry, exists := s.live(roomID)
	s.mutex.RUnlock()
	if !exists {
		return nil, ErrRoomNotFound
	}

	var room models.Room
	if err := json.Unmarshal(entry.data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *MemoryStore) SetRoom(ctx context.Context, room *models.Room, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.items[room.RoomID] = memoryEntry{
		data:      data,
		expiresAt: s.clock.Now().Add(ttl),
	}
	s.mutex.Unlock()
	return nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.mutex.Lock()
	delete(s.items, roomID)
	s.mutex.Unlock()
	return nil
}

func (s *MemoryStore) ListRoomIDs(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		if _, exists := s.live(id); exists {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) RoomTTL(ctx context.Context, roomID string) (time.Duration, error) {
	s.mutex.RLock()
	entry, exists := s.live(roomID)
	s.mutex.RUnlock()
	if !exists {
		return 0, ErrRoomNotFound
	}
	return entry.expiresAt.Sub(s.clock.Now()), nil
}

func (s *MemoryStore) RefreshRoomTTL(ctx context.Context, roomID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, exists := s.live(roomID)
	if !exists {
		return ErrRoomNotFound
	}
	entry.expiresAt = s.clock.Now().Add(ttl)
	s.items[roomID] = entry
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
