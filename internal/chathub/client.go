package chathub

import "debatematch/backend/internal/models"

// Watcher is a connection subscribed to the lifecycle events of one room, e.g.
// the WebSocket of a participant waiting for a partner. It abstracts the
// underlying transport so the hub can manage watchers uniformly.
type Watcher interface {
	// GetUserID returns the participant behind the connection, if known.
	GetUserID() string
	// GetRoomID returns the room whose events the watcher receives.
	GetRoomID() string

	// GetSendChannel returns the channel the EventHub writes events to.
	// The hub never blocks on it: a full channel drops the watcher.
	GetSendChannel() chan<- models.RoomEvent

	// Run starts the watcher's pumps.
	Run()
	// Close shuts the watcher down. It must be safe to call more than once.
	Close()
}
