package handler

import (
	"debatematch/backend/internal/chathub"
	"debatematch/backend/internal/credential"
	"debatematch/backend/internal/models"
	"debatematch/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// errorStatus maps core errors to HTTP statuses. Store failures and exhausted
// conflict retries are 400, which existing clients already handle as a
// retryable request failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, chathub.ErrInvalidTopic), errors.Is(err, chathub.ErrInvalidParticipant):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, credential.ErrCredentialConfig):
		return http.StatusInternalServerError
	case errors.Is(err, chathub.ErrConflictRetryExhausted), errors.Is(err, storage.ErrStoreUnavailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error. When credentials failed after a room was
// committed, the room is included so the client can call the credentials
// endpoint instead of matching again.
func respondError(c *gin.Context, err error, alloc *chathub.Allocation) {
	body := gin.H{"error": err.Error()}
	if alloc != nil && alloc.Room != nil {
		body["room"] = alloc.Room
	}
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "api.handler").Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, body)
}

func tokens(alloc *chathub.Allocation) (string, string) {
	return alloc.Credentials.Media.Token, alloc.Credentials.Messaging.Token
}

// FindRoom (GET /api/rooms) tries to claim a waiting room for the topic. When
// none can be claimed it answers with an empty list and creates nothing; the
// client then POSTs to create one.
func (h *Handler) FindRoom(c *gin.Context) {
	alloc, err := h.Matcher.FindMatch(c.Request.Context(), c.Query("topic"), c.Query("userId"))
	if err != nil {
		respondError(c, err, alloc)
		return
	}
	if alloc == nil {
		c.JSON(http.StatusOK, gin.H{"rooms": []models.Room{}, "token": nil})
		return
	}

	rtcToken, rtmToken := tokens(alloc)
	c.JSON(http.StatusOK, gin.H{
		"rooms":    []*models.Room{alloc.Room},
		"rtcToken": rtcToken,
		"rtmToken": rtmToken,
	})
}

// CreateRoom (POST /api/rooms) creates a waiting room with the caller in it.
func (h *Handler) CreateRoom(c *gin.Context) {
	alloc, err := h.Matcher.CreateRoom(c.Request.Context(), c.Query("topic"), c.Query("userId"))
	if err != nil {
		respondError(c, err, alloc)
		return
	}

	rtcToken, rtmToken := tokens(alloc)
	c.JSON(http.StatusOK, gin.H{
		"room":     alloc.Room,
		"rtcToken": rtcToken,
		"rtmToken": rtmToken,
	})
}

// MatchRoom (POST /api/rooms/match) runs find-or-create in one request.
func (h *Handler) MatchRoom(c *gin.Context) {
	alloc, err := h.Matcher.FindOrCreate(c.Request.Context(), c.Query("topic"), c.Query("userId"))
	if err != nil {
		respondError(c, err, alloc)
		return
	}

	rtcToken, rtmToken := tokens(alloc)
	c.JSON(http.StatusOK, gin.H{
		"room":     alloc.Room,
		"created":  alloc.Created,
		"rtcToken": rtcToken,
		"rtmToken": rtmToken,
	})
}

// DeleteRooms (DELETE /api/rooms) removes the given room, if any, and always
// sweeps empty rooms.
func (h *Handler) DeleteRooms(c *gin.Context) {
	ctx := c.Request.Context()
	var deleted int64

	if roomID := c.Query("roomId"); roomID != "" {
		existed, err := h.Lifecycle.DeleteRoom(ctx, roomID)
		if err != nil {
			respondError(c, err, nil)
			return
		}
		if existed {
			deleted++
		}
	}

	swept, err := h.Lifecycle.SweepEmpty(ctx)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room(s) deleted", "deleted": deleted + swept})
}

// LeaveRoom (PUT /api/rooms) records one participant leaving the room.
func (h *Handler) LeaveRoom(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
		return
	}

	outcome, err := h.Lifecycle.DecrementOccupancy(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if outcome == models.OutcomeNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": outcome.Message(), "outcome": outcome})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": outcome.Message(), "outcome": outcome})
}

// GetRoom (GET /api/rooms/:roomId) returns the current record.
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.Storage.GetRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// RoomCredentials (GET /api/rooms/:roomId/credentials) re-issues credentials
// for a room the caller already occupies, without matching again.
func (h *Handler) RoomCredentials(c *gin.Context) {
	alloc, err := h.Matcher.IssueCredentials(c.Request.Context(), c.Param("roomId"), c.Query("userId"))
	if err != nil {
		respondError(c, err, alloc)
		return
	}

	rtcToken, rtmToken := tokens(alloc)
	c.JSON(http.StatusOK, gin.H{
		"room":     alloc.Room,
		"rtcToken": rtcToken,
		"rtmToken": rtmToken,
	})
}
