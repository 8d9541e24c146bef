package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetAnonID issues a new anonymous participant ID.
// Participants are ephemeral: the ID is not stored anywhere.
func (h *Handler) GetAnonID(c *gin.Context) {
	anonUUID, err := uuid.NewRandom()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create participant id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"anon_id": anonUUID.String()})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
