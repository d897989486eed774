package game

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// emitted records one outbound event captured by the mock notifier.
type emitted struct {
	kind   string // "room", "except", "player"
	target string
	except string
	msgID  uint16
	data   []byte
}

// MockNotifier is a test double for the Notifier interface.
// It records every emitted event for later inspection.
type MockNotifier struct {
	mutex   sync.Mutex
	events  []emitted
	evicted []string
}

func (m *MockNotifier) ToRoom(roomID string, msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.events = append(m.events, emitted{kind: "room", target: roomID, msgID: msgID, data: data})
	return nil
}

func (m *MockNotifier) ToRoomExcept(roomID, exceptID string, msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.events = append(m.events, emitted{kind: "except", target: roomID, except: exceptID, msgID: msgID, data: data})
	return nil
}

func (m *MockNotifier) ToPlayer(playerID string, msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.events = append(m.events, emitted{kind: "player", target: playerID, msgID: msgID, data: data})
	return nil
}

func (m *MockNotifier) Evict(playerID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.evicted = append(m.evicted, playerID)
}

// eventsOf returns all recorded events with the given message id.
func (m *MockNotifier) eventsOf(msgID uint16) []emitted {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var out []emitted
	for _, e := range m.events {
		if e.msgID == msgID {
			out = append(out, e)
		}
	}
	return out
}

// lastOf returns the most recent event with the given message id.
func (m *MockNotifier) lastOf(msgID uint16) (emitted, bool) {
	events := m.eventsOf(msgID)
	if len(events) == 0 {
		return emitted{}, false
	}
	return events[len(events)-1], true
}

func (m *MockNotifier) reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.events = nil
	m.evicted = nil
}

// MockWordSource is a test double for the WordSource interface.
type MockWordSource struct {
	words []string
	err   error
}

func (m *MockWordSource) RandomWords(n int, language models.Language, onlyCustomWords bool, customWords []string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if n > len(m.words) {
		n = len(m.words)
	}
	return m.words[:n], nil
}

// testEngine bundles an engine with its doubles.
type testEngine struct {
	engine   *Engine
	notifier *MockNotifier
	source   *MockWordSource
	store    *persistence.MemoryStore
	clock    *clockwork.FakeClock
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := persistence.NewMemoryStore(clock)
	notifier := &MockNotifier{}
	source := &MockWordSource{words: []string{"apple", "banana", "cherry", "dragon", "eagle"}}
	return &testEngine{
		engine:   NewEngine(store, source, notifier, clock, time.Hour),
		notifier: notifier,
		source:   source,
		store:    store,
		clock:    clock,
	}
}

// newRoomWithPlayers creates a room and joins n players named p1..pN.
// Player p1 is the creator.
func (te *testEngine) newRoomWithPlayers(t *testing.T, n int) string {
	t.Helper()
	ctx := context.Background()
	roomID, err := te.engine.CreateRoom(ctx, "p1", models.LanguageEnglish)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	for i := 0; i < n; i++ {
		id := playerID(i)
		if err := te.engine.Join(ctx, roomID, id, "client-"+id, names[i]); err != nil {
			t.Fatalf("Join %s failed: %v", id, err)
		}
	}
	te.notifier.reset()
	return roomID
}

func playerID(i int) string {
	return fmt.Sprintf("p%d", i+1)
}

func (te *testEngine) room(t *testing.T, roomID string) *models.Room {
	t.Helper()
	room, err := te.store.GetRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	return room
}

func decodePayload(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
}
