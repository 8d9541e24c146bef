package chathub

import (
	"context"
	"debatematch/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Forward feeds room events received over Redis Pub/Sub into the hub, so
// watchers on this instance see changes made by any instance. It returns when
// ctx is cancelled or the subscription closes.
func (h *EventHub) Forward(ctx context.Context, pubsub *redis.PubSub) error {
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := storage.DecodeRoomEvent(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Str("module", "chathub.pubsub").Str("channel", msg.Channel).
					Msg("error unmarshalling room event")
				continue
			}
			_ = h.PublishRoomEvent(ctx, ev)
		}
	}
}
