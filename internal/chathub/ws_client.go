package chathub

import (
	"debatematch/backend/internal/config"
	"debatematch/backend/internal/models"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketWatcher streams the events of one room to a WebSocket connection.
// Incoming frames are read only to process pongs and detect disconnects.
type WebSocketWatcher struct {
	UserID string
	RoomID string
	Conn   *websocket.Conn
	Hub    *EventHub
	Send   chan models.RoomEvent

	closeOnce sync.Once
}

func NewWebSocketWatcher(hub *EventHub, conn *websocket.Conn, roomID, userID string) *WebSocketWatcher {
	return &WebSocketWatcher{
		UserID: userID,
		RoomID: roomID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.RoomEvent, config.WatcherBufferSize),
	}
}

func (c *WebSocketWatcher) GetUserID() string                       { return c.UserID }
func (c *WebSocketWatcher) GetRoomID() string                       { return c.RoomID }
func (c *WebSocketWatcher) GetSendChannel() chan<- models.RoomEvent { return c.Send }

// Run starts the write and read pumps.
func (c *WebSocketWatcher) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes Send, which stops writePump and closes the connection.
func (c *WebSocketWatcher) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WebSocketWatcher) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("module", "chathub.ws").Str("room_id", c.RoomID).Msg("watcher read error")
			}
			return
		}
	}
}

func (c *WebSocketWatcher) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("module", "chathub.ws").Str("room_id", c.RoomID).Msg("error encoding room event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
