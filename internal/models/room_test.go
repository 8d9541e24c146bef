package models_test

import (
	"debatematch/backend/internal/models"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoomBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestRoomBeforeCreate_GeneratesUUID(t *testing.T) {
	room := &models.Room{Status: models.RoomStatusWaiting, UserCount: 1, Topic: "AI"}
	assert.Empty(t, room.ID)

	err := room.BeforeCreate(nil)

	assert.NoError(t, err)
	_, parseErr := uuid.Parse(room.ID)
	assert.NoError(t, parseErr, "Room ID must be a valid UUID string")
}

// TestRoomBeforeCreate_PreservesExistingID verifies the hook doesn't overwrite an existing ID.
func TestRoomBeforeCreate_PreservesExistingID(t *testing.T) {
	room := &models.Room{ID: "fixed"}
	assert.NoError(t, room.BeforeCreate(nil))
	assert.Equal(t, "fixed", room.ID)
}

func TestNewWaitingRoom(t *testing.T) {
	room := models.NewWaitingRoom("Climate Change Policy")

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, models.StateWaiting, room.State())
	assert.Equal(t, "Climate Change Policy", room.Topic)
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.RoomState
		event   models.RoomEventKind
		want    models.RoomState
		wantErr bool
	}{
		{name: "join waiting", from: models.StateWaiting, event: models.Join, want: models.StateChatting},
		{name: "join chatting", from: models.StateChatting, event: models.Join, want: models.StateChatting, wantErr: true},
		{name: "join empty", from: models.StateEmpty, event: models.Join, want: models.StateEmpty, wantErr: true},
		{name: "leave chatting", from: models.StateChatting, event: models.Leave, want: models.StateWaiting},
		{name: "leave waiting", from: models.StateWaiting, event: models.Leave, want: models.StateEmpty},
		{name: "leave empty", from: models.StateEmpty, event: models.Leave, want: models.StateEmpty},
		{name: "leave negative count", from: models.RoomState{Status: models.RoomStatusWaiting, UserCount: -3}, event: models.Leave, want: models.StateEmpty},
		{name: "leave over capacity", from: models.RoomState{Status: models.RoomStatusChatting, UserCount: 3}, event: models.Leave, want: models.StateChatting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.Transition(tt.from, tt.event)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestTransition_Invariants checks that every reachable state pairs count and status.
func TestTransition_Invariants(t *testing.T) {
	for count := -1; count <= 3; count++ {
		s := models.StateFor(count)
		switch s.UserCount {
		case 0:
			assert.Equal(t, models.RoomStatusEmpty, s.Status)
		case 1:
			assert.Equal(t, models.RoomStatusWaiting, s.Status)
		case 2:
			assert.Equal(t, models.RoomStatusChatting, s.Status)
		default:
			t.Fatalf("count %d escaped [0,2]", s.UserCount)
		}
	}
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, models.OutcomeDeleted, models.OutcomeFor(models.StateEmpty))
	assert.Equal(t, models.OutcomeSetWaiting, models.OutcomeFor(models.StateWaiting))
	assert.Equal(t, models.OutcomeSetChatting, models.OutcomeFor(models.StateChatting))
	assert.Equal(t, "Room set to waiting", models.OutcomeSetWaiting.Message())
	assert.Equal(t, "Room not found", models.OutcomeNotFound.Message())
}
