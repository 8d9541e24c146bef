package chathub

import (
	"context"
	"debatematch/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// EventPublisher delivers room lifecycle events to whoever watches the room.
// Implemented by storage.RedisEvents (cross-instance) and EventHub (local only).
type EventPublisher interface {
	PublishRoomEvent(ctx context.Context, ev models.RoomEvent) error
}

// publish is best effort: the room change is already committed, so a lost
// notification is logged and never fails the request.
func publish(ctx context.Context, p EventPublisher, ev models.RoomEvent) {
	if p == nil {
		return
	}
	if err := p.PublishRoomEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Str("module", "chathub.events").Str("room_id", ev.RoomID).
			Str("event", ev.Type).Msg("failed to publish room event")
	}
}
