package handler

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with every route of the service.
func SetupRouter(h *Handler, mode string) *gin.Engine {
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if mode == gin.DebugMode {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Health)
	r.GET("/anonid", h.GetAnonID)

	rooms := r.Group("/api/rooms")
	rooms.GET("", h.FindRoom)
	rooms.POST("", h.CreateRoom)
	rooms.PUT("", h.LeaveRoom)
	rooms.DELETE("", h.DeleteRooms)
	rooms.POST("/match", h.MatchRoom)
	rooms.GET("/:roomId", h.GetRoom)
	rooms.GET("/:roomId/credentials", h.RoomCredentials)
	rooms.GET("/:roomId/ws", h.WatchRoom)

	return r
}
