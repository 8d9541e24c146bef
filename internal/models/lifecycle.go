package models

import "fmt"

// RoomState is the mutable part of a Room: the tagged status plus occupancy.
// Conditional store operations compare the stored state against an expected one.
type RoomState struct {
	Status    RoomStatus
	UserCount int
}

var (
	StateEmpty    = RoomState{Status: RoomStatusEmpty, UserCount: 0}
	StateWaiting  = RoomState{Status: RoomStatusWaiting, UserCount: 1}
	StateChatting = RoomState{Status: RoomStatusChatting, UserCount: 2}
)

func (s RoomState) String() string {
	return fmt.Sprintf("%s/%d", s.Status, s.UserCount)
}

// RoomEventKind is an input to the room state machine.
type RoomEventKind int

const (
	// Join is a second participant claiming a waiting room.
	Join RoomEventKind = iota
	// Leave is a participant departing.
	Leave
)

func (k RoomEventKind) String() string {
	switch k {
	case Join:
		return "join"
	case Leave:
		return "leave"
	default:
		return fmt.Sprintf("RoomEventKind(%d)", int(k))
	}
}

// StateFor returns the canonical state for an occupancy count. Counts outside
// [0, MaxOccupancy] are clamped.
func StateFor(count int) RoomState {
	switch {
	case count <= 0:
		return StateEmpty
	case count == 1:
		return StateWaiting
	default:
		return StateChatting
	}
}

// Transition is the room state machine. It is pure: the caller applies the result
// through a conditional store update.
//
//	waiting/1  --join-->  chatting/2
//	chatting/2 --leave--> waiting/1
//	waiting/1  --leave--> empty/0
//
// Join is only valid from waiting. Leave from empty stays empty. A stored count
// above MaxOccupancy (never written by this package) decrements and clamps back to
// chatting.
func Transition(s RoomState, ev RoomEventKind) (RoomState, error) {
	switch ev {
	case Join:
		if s.Status != RoomStatusWaiting {
			return s, fmt.Errorf("cannot join room in state %s", s)
		}
		return StateChatting, nil
	case Leave:
		count := s.UserCount
		if count <= 0 {
			count = 1
		}
		return StateFor(count - 1), nil
	default:
		return s, fmt.Errorf("unknown room event %v", ev)
	}
}

// LifecycleOutcome reports what a departure did to a room.
type LifecycleOutcome string

const (
	OutcomeDeleted     LifecycleOutcome = "deleted"
	OutcomeSetWaiting  LifecycleOutcome = "set_waiting"
	OutcomeSetChatting LifecycleOutcome = "set_chatting"
	OutcomeNotFound    LifecycleOutcome = "not_found"
)

// OutcomeFor maps the post-departure state to its outcome.
func OutcomeFor(s RoomState) LifecycleOutcome {
	switch s.Status {
	case RoomStatusEmpty:
		return OutcomeDeleted
	case RoomStatusWaiting:
		return OutcomeSetWaiting
	default:
		return OutcomeSetChatting
	}
}

// Message is the human readable description the HTTP layer returns.
func (o LifecycleOutcome) Message() string {
	switch o {
	case OutcomeDeleted:
		return "Room set to empty and deleted"
	case OutcomeSetWaiting:
		return "Room set to waiting"
	case OutcomeSetChatting:
		return "Room set to chatting"
	default:
		return "Room not found"
	}
}
