package storage

import (
	"context"
	"debatematch/backend/internal/models"
	"errors"

	"gorm.io/gorm"
)

// RoomStore is the only owner of Room records. It exposes atomic primitives only:
// every mutation is a single round trip whose precondition the store re-checks
// itself, so callers need no in-process locking.
type RoomStore interface {
	// CreateRoom inserts a new record. An empty ID is assigned by the store.
	CreateRoom(ctx context.Context, room *models.Room) error
	// GetRoom returns a snapshot of the record or ErrRoomNotFound.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	// SampleRoom picks one record uniformly at random among those with the given
	// topic and status. It returns nil, nil when none match.
	SampleRoom(ctx context.Context, topic string, status models.RoomStatus) (*models.Room, error)
	// UpdateRoomIf sets the room to next iff its stored state equals expected.
	// It reports false, nil when the record is missing or its state moved on.
	UpdateRoomIf(ctx context.Context, roomID string, expected, next models.RoomState) (bool, error)
	// DeleteRoom removes the record and reports whether it existed.
	DeleteRoom(ctx context.Context, roomID string) (bool, error)
	// DeleteRoomsByStatus removes all records with the given status.
	DeleteRoomsByStatus(ctx context.Context, status models.RoomStatus) (int64, error)
}

// Service is the PostgreSQL RoomStore backed by gorm.
type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Close releases the connection pool.
func (s *Service) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the rooms table.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(&models.Room{})
}

func (s *Service) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := s.DB.WithContext(ctx).Create(room).Error; err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Service) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room

	err := s.DB.WithContext(ctx).Where("id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &room, nil
}

// SampleRoom uses ORDER BY random(); the (topic, status) index keeps the candidate
// set small since only unmatched rooms are ever waiting.
func (s *Service) SampleRoom(ctx context.Context, topic string, status models.RoomStatus) (*models.Room, error) {
	var room models.Room

	err := s.DB.WithContext(ctx).
		Where("topic = ? AND status = ?", topic, status).
		Order("random()").
		Take(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &room, nil
}

// UpdateRoomIf is a single conditional UPDATE; Postgres re-evaluates the WHERE
// clause under the row lock, so of two racing callers exactly one sees a row affected.
func (s *Service) UpdateRoomIf(ctx context.Context, roomID string, expected, next models.RoomState) (bool, error) {
	result := s.DB.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status = ? AND user_count = ?", roomID, expected.Status, expected.UserCount).
		Updates(map[string]interface{}{
			"status":     next.Status,
			"user_count": next.UserCount,
		})
	if result.Error != nil {
		return false, unavailable(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *Service) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	result := s.DB.WithContext(ctx).Where("id = ?", roomID).Delete(&models.Room{})
	if result.Error != nil {
		return false, unavailable(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Service) DeleteRoomsByStatus(ctx context.Context, status models.RoomStatus) (int64, error) {
	result := s.DB.WithContext(ctx).Where("status = ?", status).Delete(&models.Room{})
	if result.Error != nil {
		return 0, unavailable(result.Error)
	}
	return result.RowsAffected, nil
}
