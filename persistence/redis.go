// persistence/redis.go
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wfunc/drawguess/models"
)

const roomKeyPrefix = "room:"

// RedisStore 使用Redis的房间存储实现
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func roomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

func (s *RedisStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	data, err := s.client.Get(ctx, roomKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RedisStore) SetRoom(ctx context.Context, room *models.Room, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomKey(room.RoomID), data, ttl).Err()
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, roomKey(roomID)).Err()
}

func (s *RedisStore) ListRoomIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(roomKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *RedisStore) RoomTTL(ctx context.Context, roomID string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, roomKey(roomID)).Result()
	if err != nil {
		return 0, err
	}
	// go-redis keeps redis' -2 (missing key) and -1 (no expiry) replies as
	// raw negative durations.
	if ttl == -2 {
		return 0, ErrRoomNotFound
	}
	if ttl == -1 {
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisStore) RefreshRoomTTL(ctx context.Context, roomID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	ok, err := s.client.Expire(ctx, roomKey(roomID), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
