// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/drawguess/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL房间存储实现。Expiry is an expires_at
// column; expired rows count as absent and are reaped lazily on writes.
type GormPostgreSQL struct {
	db *gorm.DB
}

// RoomRecord 房间存储表模型
type RoomRecord struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    string    `gorm:"uniqueIndex;not null"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGormPostgreSQL 创建GORM PostgreSQL房间存储
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RoomRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) liveRecord(ctx context.Context, roomID string) (*RoomRecord, error) {
	var record RoomRecord
	err := p.db.WithContext(ctx).
		Where("room_id = ? AND expires_at > ?", roomID, time.Now()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (p *GormPostgreSQL) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	record, err := p.liveRecord(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(record.Data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (p *GormPostgreSQL) SetRoom(ctx context.Context, room *models.Room, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(ttl)

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Reap expired rows opportunistically.
		tx.Where("expires_at <= ?", time.Now()).Delete(&RoomRecord{})

		var record RoomRecord
		result := tx.Where("room_id = ?", room.RoomID).First(&record)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			record = RoomRecord{
				RoomID:    room.RoomID,
				Data:      data,
				ExpiresAt: expiresAt,
			}
			return tx.Create(&record).Error
		} else if result.Error != nil {
			return result.Error
		}

		record.Data = data
		record.ExpiresAt = expiresAt
		return tx.Save(&record).Error
	})
}

func (p *GormPostgreSQL) DeleteRoom(ctx context.Context, roomID string) error {
	return p.db.WithContext(ctx).Where("room_id = ?", roomID).Delete(&RoomRecord{}).Error
}

func (p *GormPostgreSQL) ListRoomIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := p.db.WithContext(ctx).Model(&RoomRecord{}).
		Where("expires_at > ?", time.Now()).
		Pluck("room_id", &ids).Error
	return ids, err
}

func (p *GormPostgreSQL) RoomTTL(ctx context.Context, roomID string) (time.Duration, error) {
	record, err := p.liveRecord(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return time.Until(record.ExpiresAt), nil
}

func (p *GormPostgreSQL) RefreshRoomTTL(ctx context.Context, roomID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	result := p.db.WithContext(ctx).Model(&RoomRecord{}).
		Where("room_id = ? AND expires_at > ?", roomID, time.Now()).
		Update("expires_at", time.Now().Add(ttl))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
