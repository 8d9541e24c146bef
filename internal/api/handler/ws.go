package handler

import (
	"debatematch/backend/internal/chathub"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Accepts connections from any origin. Restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchRoom (GET /api/rooms/:roomId/ws) upgrades to a WebSocket that streams the
// room's lifecycle events, e.g. to tell a waiting participant a partner arrived.
func (h *Handler) WatchRoom(c *gin.Context) {
	if h.Hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room events are disabled"})
		return
	}

	roomID := c.Param("roomId")
	if _, err := h.Storage.GetRoom(c.Request.Context(), roomID); err != nil {
		respondError(c, err, nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn().Err(err).Str("module", "api.handler").Str("room_id", roomID).Msg("websocket upgrade failed")
		return
	}

	watcher := chathub.NewWebSocketWatcher(h.Hub, conn, roomID, c.Query("userId"))
	if !h.Hub.Register(watcher) {
		conn.Close()
		return
	}
	watcher.Run()
}
