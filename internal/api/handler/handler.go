package handler

import (
	"debatematch/backend/internal/chathub"
	"debatematch/backend/internal/storage"
)

// Handler holds the core services the routes call into.
type Handler struct {
	Matcher   *chathub.MatcherService
	Lifecycle *chathub.LifecycleService
	Storage   storage.RoomStore
	// Hub is nil when room event streaming is disabled.
	Hub *chathub.EventHub
}

func NewHandler(matcher *chathub.MatcherService, lifecycle *chathub.LifecycleService, s storage.RoomStore, hub *chathub.EventHub) *Handler {
	return &Handler{Matcher: matcher, Lifecycle: lifecycle, Storage: s, Hub: hub}
}
