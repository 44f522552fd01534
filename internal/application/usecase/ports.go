package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"storefront/internal/domain/session"
)

// ========================================
// Identity provider port
// ========================================

// AuthSession is the credential material returned by the identity provider.
type AuthSession struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AuthEvent is an external auth-change notification.
type AuthEvent int

const (
	AuthEventSignedIn AuthEvent = iota
	AuthEventSignedOut
)

// Errors surfaced by identity adapters. Adapters must map provider responses
// onto these so the session engine can classify failures without knowing the
// wire format.
var (
	ErrInvalidCredentials  = errors.New("auth: invalid email or password")
	ErrEmailInUse          = errors.New("auth: email already registered")
	ErrIdentityUnavailable = errors.New("auth: identity provider unreachable")
	ErrProfileLoad         = errors.New("auth: profile load failed")
	ErrAuthInFlight        = errors.New("auth: another attempt is in flight")
	ErrSessionExpired      = errors.New("auth: session expired")
)

// IdentityClient is the external identity provider (black box).
type IdentityClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password, displayName string) (*AuthSession, error)

	// SignOut revokes the user's sessions remotely. The session engine treats
	// this as fire and forget: local state is cleared even when it fails.
	SignOut(ctx context.Context, userID string) error

	// Refresh validates a stored refresh token and returns a fresh session,
	// or ErrSessionExpired.
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)

	// OnAuthStateChange registers a listener for external auth-change events.
	// The returned func unsubscribes; callers must invoke it on teardown.
	OnAuthStateChange(fn func(AuthEvent, *AuthSession)) (unsubscribe func())
}

// ========================================
// Session persistence port (local device storage analog)
// ========================================

// SessionRecord is the serialized session blob. It is read once at startup
// and written on every successful auth transition; nothing else reads this
// storage, so the shape is ours to choose.
type SessionRecord struct {
	User         session.User `json:"user"`
	RefreshToken string       `json:"refreshToken"`
	SavedAt      time.Time    `json:"savedAt"`
}

type SessionStore interface {
	// Load returns (nil, nil) when no session is stored.
	Load() (*SessionRecord, error)
	Save(rec *SessionRecord) error
	Clear() error
}

// ========================================
// Outbound side effects
// ========================================

// Mailer sends transactional mail (order confirmations). Implemented by the
// SendGrid adapter.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// ImageStore stores product images and returns a public URL (GCS adapter).
type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}
