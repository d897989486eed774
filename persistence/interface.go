// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/drawguess/models"
)

// DefaultRoomTTL is the rolling expiry applied on every successful mutation.
const DefaultRoomTTL = 3600 * time.Second

// RoomStore 房间存储接口。One record per room, JSON-serialized aggregate,
// refreshable expiry. A missing key means the room does not exist.
type RoomStore interface {
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	SetRoom(ctx context.Context, room *models.Room, ttl time.Duration) error
	DeleteRoom(ctx context.Context, roomID string) error
	ListRoomIDs(ctx context.Context) ([]string, error)
	RoomTTL(ctx context.Context, roomID string) (time.Duration, error)
	RefreshRoomTTL(ctx context.Context, roomID string, ttl time.Duration) error
	Close() error
}

// 错误定义
var ErrRoomNotFound = errors.New("room not found")
