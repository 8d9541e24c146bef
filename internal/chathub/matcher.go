package chathub

import (
	"context"
	"debatematch/backend/internal/config"
	"debatematch/backend/internal/credential"
	"debatematch/backend/internal/models"
	"debatematch/backend/internal/storage"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// CredentialIssuer mints the media and messaging credentials of one participant.
type CredentialIssuer interface {
	IssuePair(participantID, roomID string) (*credential.Pair, error)
}

// Allocation is the result of matchmaking: the room the participant now occupies
// and the credentials to join its session.
type Allocation struct {
	Room        *models.Room
	Created     bool
	Credentials *credential.Pair
}

// MatcherService pairs participants who asked for the same topic.
// It keeps no state between calls: every decision is re-read from, or
// conditionally written to, the store.
type MatcherService struct {
	Storage storage.RoomStore
	Issuer  CredentialIssuer
	Events  EventPublisher

	// MaxAttempts bounds how many lost claim races are retried before the
	// caller falls back to creating its own room.
	MaxAttempts int
}

// NewMatcherService creates a Matcher.
func NewMatcherService(s storage.RoomStore, issuer CredentialIssuer, events EventPublisher) *MatcherService {
	return &MatcherService{
		Storage:     s,
		Issuer:      issuer,
		Events:      events,
		MaxAttempts: config.DefaultMatchAttempts,
	}
}

// NormalizeTopic trims the topic and checks its length.
func NormalizeTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" || utf8.RuneCountInString(topic) > config.MaxTopicLength {
		return "", ErrInvalidTopic
	}
	return topic, nil
}

func validate(topic, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrInvalidParticipant
	}
	return NormalizeTopic(topic)
}

// FindOrCreate claims a waiting room for the topic or, when none can be
// claimed, creates one with the caller as its first occupant.
func (m *MatcherService) FindOrCreate(ctx context.Context, topic, userID string) (*Allocation, error) {
	alloc, err := m.FindMatch(ctx, topic, userID)
	if err != nil || alloc != nil {
		return alloc, err
	}
	return m.CreateRoom(ctx, topic, userID)
}

// FindMatch tries to claim an existing waiting room. It returns nil, nil when
// there is nothing to claim, without touching the store.
//
// If credential issuance fails after a successful claim, the allocation is still
// returned together with the error: the room is committed and the caller should
// retry IssueCredentials, not matchmaking.
func (m *MatcherService) FindMatch(ctx context.Context, topic, userID string) (*Allocation, error) {
	topic, err := validate(topic, userID)
	if err != nil {
		return nil, err
	}

	room, err := m.claim(ctx, topic)
	if errors.Is(err, ErrConflictRetryExhausted) {
		log.Warn().Str("module", "chathub.matcher").Str("topic", topic).Str("user_id", userID).
			Int("attempts", m.attempts()).Msg("lost every claim race, falling back")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, nil
	}

	log.Info().Str("module", "chathub.matcher").Str("room_id", room.ID).Str("topic", topic).
		Str("user_id", userID).Msg("match found")
	m.publish(ctx, models.NewRoomEvent(models.EventRoomMatched, room))

	return m.allocate(room, false, userID)
}

// CreateRoom creates a waiting room with the caller as its only occupant.
func (m *MatcherService) CreateRoom(ctx context.Context, topic, userID string) (*Allocation, error) {
	topic, err := validate(topic, userID)
	if err != nil {
		return nil, err
	}

	room := models.NewWaitingRoom(topic)
	if err := m.Storage.CreateRoom(ctx, room); err != nil {
		log.Error().Err(err).Str("module", "chathub.matcher").Str("topic", topic).Msg("failed to create room")
		return nil, err
	}

	log.Info().Str("module", "chathub.matcher").Str("room_id", room.ID).Str("topic", topic).
		Str("user_id", userID).Msg("room created, waiting for partner")
	m.publish(ctx, models.NewRoomEvent(models.EventRoomCreated, room))

	return m.allocate(room, true, userID)
}

// IssueCredentials re-issues credentials for a room the caller already holds.
// It never changes occupancy.
func (m *MatcherService) IssueCredentials(ctx context.Context, roomID, userID string) (*Allocation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidParticipant
	}
	room, err := m.Storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return m.allocate(room, false, userID)
}

// claim samples a waiting room and flips it to chatting with a conditional
// update. A lost race re-samples; after MaxAttempts losses it gives up.
func (m *MatcherService) claim(ctx context.Context, topic string) (*models.Room, error) {
	for attempt := 1; attempt <= m.attempts(); attempt++ {
		candidate, err := m.Storage.SampleRoom(ctx, topic, models.RoomStatusWaiting)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}

		expected := candidate.State()
		next, err := models.Transition(expected, models.Join)
		if err != nil {
			continue
		}

		ok, err := m.Storage.UpdateRoomIf(ctx, candidate.ID, expected, next)
		if err != nil {
			return nil, err
		}
		if ok {
			candidate.Status, candidate.UserCount = next.Status, next.UserCount
			return candidate, nil
		}

		log.Debug().Str("module", "chathub.matcher").Str("room_id", candidate.ID).
			Int("attempt", attempt).Msg("room claimed by another participant")
	}
	return nil, ErrConflictRetryExhausted
}

func (m *MatcherService) allocate(room *models.Room, created bool, userID string) (*Allocation, error) {
	alloc := &Allocation{Room: room, Created: created}

	pair, err := m.Issuer.IssuePair(userID, room.ID)
	if err != nil {
		log.Error().Err(err).Str("module", "chathub.matcher").Str("room_id", room.ID).
			Msg("room allocated but credentials could not be issued")
		return alloc, fmt.Errorf("issue credentials for room %s: %w", room.ID, err)
	}
	alloc.Credentials = pair
	return alloc, nil
}

func (m *MatcherService) attempts() int {
	if m.MaxAttempts > 0 {
		return m.MaxAttempts
	}
	return config.DefaultMatchAttempts
}

func (m *MatcherService) publish(ctx context.Context, ev models.RoomEvent) {
	publish(ctx, m.Events, ev)
}
