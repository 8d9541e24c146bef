package storage

import (
	"context"
	"debatematch/backend/internal/models"
	"math/rand/v2"
	"sync"
	"time"
)

// MemoryStore is a single-process RoomStore. Each method holds the mutex for its
// whole body, which gives it the same per-call atomicity as the database stores.
// Used for local development (STORE_DRIVER=memory) and tests.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]models.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]models.Room)}
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	if err := room.BeforeCreate(nil); err != nil {
		return err
	}
	now := time.Now().UTC()
	room.CreatedAt, room.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = *room
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

func (s *MemoryStore) SampleRoom(ctx context.Context, topic string, status models.RoomStatus) (*models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []models.Room
	for _, room := range s.rooms {
		if room.Topic == topic && room.Status == status {
			candidates = append(candidates, room)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	room := candidates[rand.IntN(len(candidates))]
	return &room, nil
}

func (s *MemoryStore) UpdateRoomIf(ctx context.Context, roomID string, expected, next models.RoomState) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.State() != expected {
		return false, nil
	}
	room.Status = next.Status
	room.UserCount = next.UserCount
	room.UpdatedAt = time.Now().UTC()
	s.rooms[roomID] = room
	return true, nil
}

func (s *MemoryStore) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.rooms[roomID]
	delete(s.rooms, roomID)
	return ok, nil
}

func (s *MemoryStore) DeleteRoomsByStatus(ctx context.Context, status models.RoomStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, room := range s.rooms {
		if room.Status == status {
			delete(s.rooms, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored rooms.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
