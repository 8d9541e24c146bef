package chathub_test

import (
	"context"
	"debatematch/backend/internal/credential"
	"debatematch/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.RoomStore.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateRoom(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockStorage) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockStorage) SampleRoom(ctx context.Context, topic string, status models.RoomStatus) (*models.Room, error) {
	args := m.Called(ctx, topic, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	room := *args.Get(0).(*models.Room)
	return &room, args.Error(1)
}

func (m *MockStorage) UpdateRoomIf(ctx context.Context, roomID string, expected, next models.RoomState) (bool, error) {
	args := m.Called(ctx, roomID, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	args := m.Called(ctx, roomID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteRoomsByStatus(ctx context.Context, status models.RoomStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockIssuer is a testify mock of chathub.CredentialIssuer.
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) IssuePair(participantID, roomID string) (*credential.Pair, error) {
	args := m.Called(participantID, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.Pair), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRoomEvent(ctx context.Context, ev models.RoomEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
