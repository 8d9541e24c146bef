package chathub

import (
	"context"
	"debatematch/backend/internal/config"
	"debatematch/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// EventHub fans room events out to the watchers connected to this instance.
// All watcher bookkeeping happens on the Run goroutine.
type EventHub struct {
	watchers map[string]map[Watcher]struct{}

	// Channels
	EventCh      chan models.RoomEvent
	RegisterCh   chan Watcher
	UnregisterCh chan Watcher

	done chan struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		watchers:     make(map[string]map[Watcher]struct{}),
		EventCh:      make(chan models.RoomEvent, config.EventBacklog),
		RegisterCh:   make(chan Watcher),
		UnregisterCh: make(chan Watcher),
		done:         make(chan struct{}),
	}
}

// PublishRoomEvent queues the event for local delivery. It never blocks: when
// the backlog is full the event is dropped.
func (h *EventHub) PublishRoomEvent(_ context.Context, ev models.RoomEvent) error {
	select {
	case h.EventCh <- ev:
	default:
		log.Warn().Str("module", "chathub.hub").Str("room_id", ev.RoomID).Msg("event backlog full, dropping event")
	}
	return nil
}

// Register adds a watcher. It returns false if the hub has stopped.
func (h *EventHub) Register(w Watcher) bool {
	select {
	case h.RegisterCh <- w:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a watcher and closes it. Safe after the hub stopped.
func (h *EventHub) Unregister(w Watcher) {
	select {
	case h.UnregisterCh <- w:
	case <-h.done:
	}
}

// Count returns the number of watchers of a room. Only for use from the Run
// goroutine or after Run returned.
func (h *EventHub) Count(roomID string) int {
	return len(h.watchers[roomID])
}

// Run is the hub's main loop. It returns when ctx is cancelled, after closing
// every watcher.
func (h *EventHub) Run(ctx context.Context) error {
	log.Info().Str("module", "chathub.hub").Msg("event hub started")
	defer func() {
		close(h.done)
		for _, room := range h.watchers {
			for w := range room {
				w.Close()
			}
		}
		h.watchers = make(map[string]map[Watcher]struct{})
		log.Info().Str("module", "chathub.hub").Msg("event hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case w := <-h.RegisterCh:
			room, ok := h.watchers[w.GetRoomID()]
			if !ok {
				room = make(map[Watcher]struct{})
				h.watchers[w.GetRoomID()] = room
			}
			room[w] = struct{}{}
			log.Debug().Str("module", "chathub.hub").Str("room_id", w.GetRoomID()).
				Str("user_id", w.GetUserID()).Msg("watcher registered")

		case w := <-h.UnregisterCh:
			h.remove(w)

		case ev := <-h.EventCh:
			h.deliver(ev)
		}
	}
}

func (h *EventHub) deliver(ev models.RoomEvent) {
	for w := range h.watchers[ev.RoomID] {
		select {
		case w.GetSendChannel() <- ev:
		default:
			// Slow consumer.
			h.remove(w)
		}
	}
}

func (h *EventHub) remove(w Watcher) {
	room, ok := h.watchers[w.GetRoomID()]
	if !ok {
		return
	}
	if _, ok := room[w]; !ok {
		return
	}
	delete(room, w)
	if len(room) == 0 {
		delete(h.watchers, w.GetRoomID())
	}
	w.Close()
}
