package storage

import (
	"context"
	"debatematch/backend/internal/models"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RoomEventChannelPrefix is prepended to the room ID to form the pub/sub channel.
const RoomEventChannelPrefix = "room:"

// RedisEvents publishes room lifecycle events over Redis Pub/Sub so that every
// server instance can forward them to its own WebSocket watchers.
type RedisEvents struct {
	Redis *redis.Client
}

func NewRedisEvents(rdb *redis.Client) *RedisEvents {
	return &RedisEvents{Redis: rdb}
}

// PublishRoomEvent sends the event to the room's channel.
func (e *RedisEvents) PublishRoomEvent(ctx context.Context, ev models.RoomEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := e.Redis.Publish(ctx, RoomEventChannelPrefix+ev.RoomID, payload).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SubscribeRoomEvents subscribes to the events of all rooms.
func (e *RedisEvents) SubscribeRoomEvents(ctx context.Context) *redis.PubSub {
	return e.Redis.PSubscribe(ctx, RoomEventChannelPrefix+"*")
}

// DecodeRoomEvent parses a pub/sub payload produced by PublishRoomEvent.
func DecodeRoomEvent(payload string) (models.RoomEvent, error) {
	var ev models.RoomEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
