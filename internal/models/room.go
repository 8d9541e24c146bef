package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomStatus is the lifecycle tag of a Room.
type RoomStatus string

const (
	RoomStatusEmpty    RoomStatus = "empty"
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusChatting RoomStatus = "chatting"
)

// MaxOccupancy is the number of participants a room pairs.
const MaxOccupancy = 2

// Room represents a pairing unit of up to two participants discussing one topic.
// It is the only persisted entity; the store owns it and callers never cache it
// across operations.
type Room struct {
	// ID is the opaque room identifier (UUID). It doubles as the media channel name.
	ID string `gorm:"primaryKey;type:text" json:"_id"`
	// Status is waiting, chatting or empty. Only waiting rooms can be matched.
	Status RoomStatus `gorm:"type:text;not null;index:idx_room_match,priority:2" json:"status"`
	// UserCount is the occupancy, always in [0, 2].
	UserCount int `gorm:"not null;default:1" json:"userCount"`
	// Topic never changes after creation.
	Topic string `gorm:"type:text;not null;index:idx_room_match,priority:1" json:"topic"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID if the room has no ID yet.
func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// State returns the (status, occupancy) pair the store compares against.
func (r *Room) State() RoomState {
	return RoomState{Status: r.Status, UserCount: r.UserCount}
}

// NewWaitingRoom builds the record a first participant creates.
func NewWaitingRoom(topic string) *Room {
	return &Room{
		ID:        uuid.New().String(),
		Status:    RoomStatusWaiting,
		UserCount: 1,
		Topic:     topic,
	}
}
