package chathub_test

import (
	"debatematch/backend/internal/models"
	"sync"
)

type MockWatcher struct {
	userID      string
	roomID      string
	RecvChannel chan models.RoomEvent

	closeOnce sync.Once
	Closed    chan struct{}
}

func newMockWatcher(userID, roomID string, buffer int) *MockWatcher {
	return &MockWatcher{
		userID:      userID,
		roomID:      roomID,
		RecvChannel: make(chan models.RoomEvent, buffer),
		Closed:      make(chan struct{}),
	}
}

func (c *MockWatcher) GetUserID() string                       { return c.userID }
func (c *MockWatcher) GetRoomID() string                       { return c.roomID }
func (c *MockWatcher) GetSendChannel() chan<- models.RoomEvent { return c.RecvChannel }

func (c *MockWatcher) Run() {
	// Not needed for testing
}

func (c *MockWatcher) Close() {
	c.closeOnce.Do(func() { close(c.Closed) })
}
