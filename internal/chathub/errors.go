package chathub

import "errors"

var (
	// ErrConflictRetryExhausted means every claim attempt lost its race. The matcher
	// falls back to creating a room; the lifecycle path reports it as a failure.
	ErrConflictRetryExhausted = errors.New("conflict retries exhausted")
	// ErrInvalidTopic is returned for an empty or oversized topic.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrInvalidParticipant is returned for an empty participant ID.
	ErrInvalidParticipant = errors.New("participant id is required")
)
