package config

import "time"

const (
	// Matching
	DefaultMatchAttempts = 3
	MaxTopicLength       = 200

	// Lifecycle
	LifecycleMaxAttempts = 5

	// Credentials
	DefaultTokenTTL = 3600 * time.Second

	// Room event WebSocket
	WriteWait         = 10 * time.Second
	PongWait          = 60 * time.Second
	PingPeriod        = (PongWait * 9) / 10
	MaxMessageSize    = 512
	WatcherBufferSize = 16
	EventBacklog      = 256
)
