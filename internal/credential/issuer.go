// Package credential mints the short-lived, room-scoped tokens a participant
// presents to the external media and messaging platform.
package credential

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the credential lifetime when the caller passes none.
const DefaultTTL = 3600 * time.Second

// Kind is the channel a credential grants access to.
type Kind string

const (
	KindMedia     Kind = "rtc"
	KindMessaging Kind = "rtm"
)

// Role is the capability granted on the channel. The role decides the kind.
type Role string

const (
	// RolePublisher may publish audio/video into the media session.
	RolePublisher Role = "publisher"
	// RoleSubscriber may only receive media.
	RoleSubscriber Role = "subscriber"
	// RoleUser is a general messaging participant.
	RoleUser Role = "rtm_user"
)

// Kind returns the channel kind this role applies to.
func (r Role) Kind() (Kind, error) {
	switch r {
	case RolePublisher, RoleSubscriber:
		return KindMedia, nil
	case RoleUser:
		return KindMessaging, nil
	default:
		return "", fmt.Errorf("unknown credential role %q", r)
	}
}

// Claims is the signed payload. Subject is the participant, Room the channel.
type Claims struct {
	Room string `json:"room"`
	Kind Kind   `json:"kind"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Credential is an issued token with its scope spelled out for the caller.
type Credential struct {
	Token         string    `json:"token"`
	Kind          Kind      `json:"kind"`
	Role          Role      `json:"role"`
	RoomID        string    `json:"room_id"`
	ParticipantID string    `json:"participant_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Pair is what every allocation hands out: one media and one messaging credential.
type Pair struct {
	Media     *Credential
	Messaging *Credential
}

// Issuer signs credentials with process-wide material. It holds no per-call state.
type Issuer struct {
	AppID          string
	AppCertificate string
	TTL            time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewIssuer creates an Issuer. Missing material is not rejected here: the
// first Issue reports ErrCredentialConfig instead.
func NewIssuer(appID, appCertificate string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{AppID: appID, AppCertificate: appCertificate, TTL: ttl}
}

// Configured reports whether signing material is present.
func (i *Issuer) Configured() bool {
	return i != nil && i.AppID != "" && i.AppCertificate != ""
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue signs a credential scoped to exactly one room and one participant,
// expiring ttl after now. A zero ttl uses the issuer default.
func (i *Issuer) Issue(participantID, roomID string, role Role, ttl time.Duration) (*Credential, error) {
	if !i.Configured() {
		return nil, ErrCredentialConfig
	}
	if participantID == "" || roomID == "" {
		return nil, errors.New("credential scope requires participant and room")
	}
	kind, err := role.Kind()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = i.TTL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	issuedAt := i.now()
	expiresAt := issuedAt.Add(ttl)
	claims := Claims{
		Room: roomID,
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.AppID,
			Subject:   participantID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.AppCertificate))
	if err != nil {
		return nil, fmt.Errorf("sign %s credential: %w", kind, err)
	}

	return &Credential{
		Token:         token,
		Kind:          kind,
		Role:          role,
		RoomID:        roomID,
		ParticipantID: participantID,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}

// IssuePair mints the media (publisher) and messaging (user) credentials for
// one participant in one room. Either both are returned or neither.
func (i *Issuer) IssuePair(participantID, roomID string) (*Pair, error) {
	media, err := i.Issue(participantID, roomID, RolePublisher, 0)
	if err != nil {
		return nil, err
	}
	messaging, err := i.Issue(participantID, roomID, RoleUser, 0)
	if err != nil {
		return nil, err
	}
	return &Pair{Media: media, Messaging: messaging}, nil
}

// Verify parses a token and checks signature, issuer and expiry as of at.
// A credential is valid strictly before its expiry second.
func (i *Issuer) Verify(token string, at time.Time) (*Claims, error) {
	if !i.Configured() {
		return nil, ErrCredentialConfig
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(i.AppCertificate), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.AppID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return at }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	if claims.Subject == "" || claims.Room == "" {
		return nil, fmt.Errorf("%w: missing scope", ErrInvalidCredential)
	}
	return claims, nil
}
