package storage

import (
	"context"
	"debatematch/backend/internal/models"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis layout:
//
//	room:<id>                       hash {id, status, user_count, topic, created_at, updated_at}
//	rooms:status:<status>           set of room ids, for bulk deletes
//	rooms:topic:<status>:<topic>    set of room ids, for sampling
//
// Index sets are only touched inside Lua scripts or MULTI blocks together with the
// hash, so they never disagree with it for longer than one command. Every key a
// script touches is passed in KEYS. The topic of a room never changes, so it is
// read before the script to name the topic index keys.
//
// The keys of one room do not share a hash slot: the store expects a single Redis
// node (or a single cluster shard), not Redis Cluster.
const (
	roomKeyPrefix   = "room:"
	statusKeyPrefix = "rooms:status:"
	topicKeyPrefix  = "rooms:topic:"

	// sampleAttempts bounds how many stale index entries SampleRoom skips.
	sampleAttempts = 3
)

var roomStatuses = []models.RoomStatus{models.RoomStatusEmpty, models.RoomStatusWaiting, models.RoomStatusChatting}

// KEYS: room, old status set, new status set, old topic set, new topic set.
// ARGV: expected status, expected count, next status, next count, updated_at, id.
var updateIfScript = redis.NewScript(`
local cur = redis.call('HMGET', KEYS[1], 'status', 'user_count')
if not cur[1] then return 0 end
if cur[1] ~= ARGV[1] or tonumber(cur[2]) ~= tonumber(ARGV[2]) then return 0 end
redis.call('HSET', KEYS[1], 'status', ARGV[3], 'user_count', ARGV[4], 'updated_at', ARGV[5])
redis.call('SREM', KEYS[2], ARGV[6])
redis.call('SREM', KEYS[4], ARGV[6])
redis.call('SADD', KEYS[3], ARGV[6])
redis.call('SADD', KEYS[5], ARGV[6])
return 1
`)

// KEYS: room, then every index set the room can be in.
// ARGV: id, required status ('' for any).
var deleteScript = redis.NewScript(`
local st = redis.call('HGET', KEYS[1], 'status')
if not st then return 0 end
if ARGV[2] ~= '' and st ~= ARGV[2] then return 0 end
redis.call('DEL', KEYS[1])
for i = 2, #KEYS do redis.call('SREM', KEYS[i], ARGV[1]) end
return 1
`)

// RedisStore is a RoomStore on plain Redis. Conditional operations run as Lua
// scripts, which Redis executes atomically.
type RedisStore struct {
	Redis *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{Redis: rdb}
}

func roomKey(id string) string { return roomKeyPrefix + id }

func statusKey(status models.RoomStatus) string { return statusKeyPrefix + string(status) }

func topicKey(status models.RoomStatus, topic string) string {
	return topicKeyPrefix + string(status) + ":" + topic
}

// indexKeys lists every index set a room with this topic can belong to.
func indexKeys(topic string) []string {
	keys := make([]string, 0, 2*len(roomStatuses))
	for _, status := range roomStatuses {
		keys = append(keys, statusKey(status), topicKey(status, topic))
	}
	return keys
}

// roomTopic returns the immutable topic of a room, or "" with ok=false if the
// room does not exist.
func (s *RedisStore) roomTopic(ctx context.Context, roomID string) (string, bool, error) {
	topic, err := s.Redis.HGet(ctx, roomKey(roomID), "topic").Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(err)
	}
	return topic, true, nil
}

func (s *RedisStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := room.BeforeCreate(nil); err != nil {
		return err
	}
	now := time.Now().UTC()
	room.CreatedAt, room.UpdatedAt = now, now

	_, err := s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, roomKey(room.ID),
			"id", room.ID,
			"status", string(room.Status),
			"user_count", room.UserCount,
			"topic", room.Topic,
			"created_at", now.UnixMilli(),
			"updated_at", now.UnixMilli(),
		)
		pipe.SAdd(ctx, statusKey(room.Status), room.ID)
		pipe.SAdd(ctx, topicKey(room.Status, room.Topic), room.ID)
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RedisStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	fields, err := s.Redis.HGetAll(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(fields) == 0 {
		return nil, ErrRoomNotFound
	}
	return roomFromHash(fields), nil
}

func (s *RedisStore) SampleRoom(ctx context.Context, topic string, status models.RoomStatus) (*models.Room, error) {
	setKey := topicKey(status, topic)

	for i := 0; i < sampleAttempts; i++ {
		id, err := s.Redis.SRandMember(ctx, setKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, unavailable(err)
		}

		room, err := s.GetRoom(ctx, id)
		if errors.Is(err, ErrRoomNotFound) {
			// Deleted between SRANDMEMBER and HGETALL.
			continue
		}
		if err != nil {
			return nil, err
		}
		if room.Topic == topic && room.Status == status {
			return room, nil
		}
	}
	return nil, nil
}

func (s *RedisStore) UpdateRoomIf(ctx context.Context, roomID string, expected, next models.RoomState) (bool, error) {
	topic, ok, err := s.roomTopic(ctx, roomID)
	if err != nil || !ok {
		return false, err
	}

	keys := []string{
		roomKey(roomID),
		statusKey(expected.Status), statusKey(next.Status),
		topicKey(expected.Status, topic), topicKey(next.Status, topic),
	}
	n, err := updateIfScript.Run(ctx, s.Redis, keys,
		string(expected.Status), expected.UserCount,
		string(next.Status), next.UserCount,
		time.Now().UTC().UnixMilli(), roomID,
	).Int()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	return s.deleteIf(ctx, roomID, "")
}

// DeleteRoomsByStatus removes the rooms with one script call per room. Each call
// re-checks the status, so a room that moved on since SMEMBERS is kept.
func (s *RedisStore) DeleteRoomsByStatus(ctx context.Context, status models.RoomStatus) (int64, error) {
	ids, err := s.Redis.SMembers(ctx, statusKey(status)).Result()
	if err != nil {
		return 0, unavailable(err)
	}

	var n int64
	for _, id := range ids {
		deleted, err := s.deleteIf(ctx, id, status)
		if err != nil {
			return n, err
		}
		if deleted {
			n++
		}
	}
	return n, nil
}

// deleteIf deletes the room and its index entries, only if its status is
// status (any status when empty).
func (s *RedisStore) deleteIf(ctx context.Context, roomID string, status models.RoomStatus) (bool, error) {
	topic, ok, err := s.roomTopic(ctx, roomID)
	if err != nil {
		return false, err
	}
	if !ok {
		if status != "" {
			// Stale index entry, e.g. the hash was removed outside this store.
			s.Redis.SRem(ctx, statusKey(status), roomID)
		}
		return false, nil
	}

	keys := append([]string{roomKey(roomID)}, indexKeys(topic)...)
	n, err := deleteScript.Run(ctx, s.Redis, keys, roomID, string(status)).Int()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

func roomFromHash(fields map[string]string) *models.Room {
	count, _ := strconv.Atoi(fields["user_count"])
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	updated, _ := strconv.ParseInt(fields["updated_at"], 10, 64)
	return &models.Room{
		ID:        fields["id"],
		Status:    models.RoomStatus(fields["status"]),
		UserCount: count,
		Topic:     fields["topic"],
		CreatedAt: time.UnixMilli(created).UTC(),
		UpdatedAt: time.UnixMilli(updated).UTC(),
	}
}
