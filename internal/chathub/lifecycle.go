package chathub

import (
	"context"
	"debatematch/backend/internal/config"
	"debatematch/backend/internal/models"
	"debatematch/backend/internal/storage"
	"errors"

	"github.com/rs/zerolog/log"
)

// LifecycleService applies departures to rooms and removes rooms that emptied.
type LifecycleService struct {
	Storage storage.RoomStore
	Events  EventPublisher
}

func NewLifecycleService(s storage.RoomStore, events EventPublisher) *LifecycleService {
	return &LifecycleService{Storage: s, Events: events}
}

// DecrementOccupancy records one participant leaving the room.
//
// The new state is written with a conditional update against the state that was
// read, so two concurrent departures serialize: one moves chatting/2 to
// waiting/1, the other re-reads and moves waiting/1 to empty/0. Only the caller
// whose update reaches empty deletes the record. A missing room yields
// OutcomeNotFound and no error, so repeated departure notifications are harmless.
func (l *LifecycleService) DecrementOccupancy(ctx context.Context, roomID string) (models.LifecycleOutcome, error) {
	for attempt := 1; attempt <= config.LifecycleMaxAttempts; attempt++ {
		room, err := l.Storage.GetRoom(ctx, roomID)
		if errors.Is(err, storage.ErrRoomNotFound) {
			return models.OutcomeNotFound, nil
		}
		if err != nil {
			return "", err
		}

		if room.Status == models.RoomStatusEmpty {
			// A previous departure emptied it but its delete did not land.
			l.removeEmpty(ctx, room)
			return models.OutcomeNotFound, nil
		}

		expected := room.State()
		next, err := models.Transition(expected, models.Leave)
		if err != nil {
			return "", err
		}

		ok, err := l.Storage.UpdateRoomIf(ctx, roomID, expected, next)
		if err != nil {
			return "", err
		}
		if !ok {
			log.Debug().Str("module", "chathub.lifecycle").Str("room_id", roomID).
				Int("attempt", attempt).Msg("room changed concurrently, re-reading")
			continue
		}

		room.Status, room.UserCount = next.Status, next.UserCount
		outcome := models.OutcomeFor(next)
		if outcome == models.OutcomeDeleted {
			l.removeEmpty(ctx, room)
		} else {
			publish(ctx, l.Events, models.NewRoomEvent(models.EventRoomLeft, room))
		}

		log.Info().Str("module", "chathub.lifecycle").Str("room_id", roomID).
			Str("outcome", string(outcome)).Msg("participant left room")
		return outcome, nil
	}
	return "", ErrConflictRetryExhausted
}

// removeEmpty deletes a room already marked empty. If the delete fails the
// record stays empty, is never matched again, and SweepEmpty collects it.
// Only the caller that actually removed the record announces room_deleted.
func (l *LifecycleService) removeEmpty(ctx context.Context, room *models.Room) {
	existed, err := l.Storage.DeleteRoom(ctx, room.ID)
	if err != nil {
		log.Warn().Err(err).Str("module", "chathub.lifecycle").Str("room_id", room.ID).
			Msg("empty room not deleted, left for sweep")
		return
	}
	if existed {
		publish(ctx, l.Events, models.NewRoomEvent(models.EventRoomDeleted, room))
	}
}

// DeleteRoom removes a room regardless of occupancy. It reports whether the
// room existed; deleting a missing room is not an error.
func (l *LifecycleService) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	existed, err := l.Storage.DeleteRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if existed {
		gone := &models.Room{ID: roomID, Status: models.RoomStatusEmpty}
		publish(ctx, l.Events, models.NewRoomEvent(models.EventRoomDeleted, gone))
	}
	return existed, nil
}

// SweepEmpty bulk-deletes every room left in the empty status.
func (l *LifecycleService) SweepEmpty(ctx context.Context) (int64, error) {
	n, err := l.Storage.DeleteRoomsByStatus(ctx, models.RoomStatusEmpty)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Str("module", "chathub.lifecycle").Int64("deleted", n).Msg("swept empty rooms")
	}
	return n, nil
}
