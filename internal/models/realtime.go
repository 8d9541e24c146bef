package models

import "time"

// Room event types published on every lifecycle change.
const (
	EventRoomCreated = "room_created"
	EventRoomMatched = "room_matched"
	EventRoomLeft    = "room_left"
	EventRoomDeleted = "room_deleted"
)

// RoomEvent is pushed to watchers of a room (e.g. the participant waiting for a partner).
type RoomEvent struct {
	Type      string     `json:"type"`
	RoomID    string     `json:"room_id"`
	Topic     string     `json:"topic,omitempty"`
	Status    RoomStatus `json:"status"`
	UserCount int        `json:"user_count"`
	At        time.Time  `json:"at"`
}

// NewRoomEvent snapshots a room into an event of the given type.
func NewRoomEvent(kind string, room *Room) RoomEvent {
	return RoomEvent{
		Type:      kind,
		RoomID:    room.ID,
		Topic:     room.Topic,
		Status:    room.Status,
		UserCount: room.UserCount,
		At:        time.Now().UTC(),
	}
}
