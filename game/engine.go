// game/engine.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/timer"
)

// Notifier delivers outbound events to room subscribers.
// This is defined here to break the import cycle between game and broadcast.
type Notifier interface {
	ToRoom(roomID string, msgID uint16, data []byte) error
	ToRoomExcept(roomID, exceptID string, msgID uint16, data []byte) error
	ToPlayer(playerID string, msgID uint16, data []byte) error
	Evict(playerID string)
}

// WordSource supplies candidate words for a turn.
type WordSource interface {
	RandomWords(n int, language models.Language, onlyCustomWords bool, customWords []string) ([]string, error)
}

// Engine 游戏核心。It owns the room lifecycle state machine, the turn
// scheduler, scoring, stroke sync and membership, all operating against the
// external room store.
type Engine struct {
	store    persistence.RoomStore
	words    WordSource
	notifier Notifier
	clock    clockwork.Clock
	roomTTL  time.Duration

	mutex sync.Mutex
	rooms map[string]*roomRuntime
	grace map[string]*timer.Handle // pending disconnect removals by client id
}

// roomRuntime is the process-local side of one room: the mutation lock, the
// phase/hint timer handles and the in-progress stroke buffer. Everything in
// here is ephemeral; a restart abandons it.
type roomRuntime struct {
	mutex      sync.Mutex
	phaseTimer *timer.Handle
	hintTimer  *timer.Handle
	strokes    map[string]*models.Stroke
	reacted    map[string]int // playerID -> round of their last reaction
}

func NewEngine(store persistence.RoomStore, words WordSource, notifier Notifier, clock clockwork.Clock, roomTTL time.Duration) *Engine {
	if roomTTL <= 0 {
		roomTTL = persistence.DefaultRoomTTL
	}
	return &Engine{
		store:    store,
		words:    words,
		notifier: notifier,
		clock:    clock,
		roomTTL:  roomTTL,
		rooms:    make(map[string]*roomRuntime),
		grace:    make(map[string]*timer.Handle),
	}
}

func (e *Engine) runtime(roomID string) *roomRuntime {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	rt, exists := e.rooms[roomID]
	if !exists {
		rt = &roomRuntime{
			phaseTimer: timer.NewHandle(e.clock),
			hintTimer:  timer.NewHandle(e.clock),
			strokes:    make(map[string]*models.Stroke),
			reacted:    make(map[string]int),
		}
		e.rooms[roomID] = rt
	}
	return rt
}

func (e *Engine) dropRuntime(roomID string) {
	e.mutex.Lock()
	rt, exists := e.rooms[roomID]
	delete(e.rooms, roomID)
	e.mutex.Unlock()

	if exists {
		rt.phaseTimer.Stop()
		rt.hintTimer.Stop()
	}
}

// withRoom serializes a mutating operation against one room. Every state
// mutation in the engine runs through here; two handlers for the same room
// can never interleave their read-modify-write cycles.
func (e *Engine) withRoom(ctx context.Context, roomID string, fn func(rt *roomRuntime, room *models.Room) error) error {
	rt := e.runtime(roomID)
	rt.mutex.Lock()
	defer rt.mutex.Unlock()

	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	return fn(rt, room)
}

// guarded runs fn like withRoom but swallows a missing room: actions against
// a vanished room are consistency no-ops, not errors.
func (e *Engine) guarded(ctx context.Context, roomID string, fn func(rt *roomRuntime, room *models.Room) error) error {
	err := e.withRoom(ctx, roomID, fn)
	if errors.Is(err, persistence.ErrRoomNotFound) {
		return nil
	}
	return err
}

func (e *Engine) save(ctx context.Context, room *models.Room) error {
	return e.store.SetRoom(ctx, room, e.roomTTL)
}

// CreateRoom creates an empty room owned by creatorID and returns its id.
func (e *Engine) CreateRoom(ctx context.Context, creatorID string, language models.Language) (string, error) {
	roomID := uuid.New().String()
	room := models.NewRoom(roomID, creatorID, language, e.clock.Now())
	if err := e.save(ctx, room); err != nil {
		return "", err
	}
	logger.Log.Infof("Player %s created room %s", creatorID, roomID)
	return roomID, nil
}

// currentDrawerOrEnd resolves the current drawer. A stale or missing drawer
// is treated as "drawer left": the round is force-ended and nil is returned.
func (e *Engine) currentDrawerOrEnd(ctx context.Context, rt *roomRuntime, room *models.Room) *models.Player {
	drawer := room.CurrentDrawer()
	if drawer == nil {
		e.endRoundLocked(ctx, rt, room, models.ReasonLeft)
		return nil
	}
	return drawer
}

func (e *Engine) emitRoom(roomID string, msgID uint16, v interface{}) {
	e.notifier.ToRoom(roomID, msgID, marshal(msgID, v))
}

func (e *Engine) emitRoomExcept(roomID, exceptID string, msgID uint16, v interface{}) {
	e.notifier.ToRoomExcept(roomID, exceptID, msgID, marshal(msgID, v))
}

func (e *Engine) emitPlayer(playerID string, msgID uint16, v interface{}) {
	e.notifier.ToPlayer(playerID, msgID, marshal(msgID, v))
}

func marshal(msgID uint16, v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal payload for message %d: %v", msgID, err)
		return nil
	}
	return data
}
