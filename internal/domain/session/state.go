package session

import (
	"strings"
	"time"
)

// Status is the auth lifecycle phase of a session.
type Status string

const (
	// StatusChecking is the transient startup/in-flight phase.
	StatusChecking Status = "checking"
	// StatusAuthenticated means Identity is present.
	StatusAuthenticated Status = "authenticated"
	// StatusAnonymous means no identity.
	StatusAnonymous Status = "anonymous"
	// StatusError is reached after a failed login/signup attempt.
	StatusError Status = "error"
)

// User is the identity record plus its profile fields
// (displayName/isAdmin come from the profiles lookup, not the token).
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	Phone       string    `json:"phone,omitempty"`
	Company     string    `json:"company,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserPatch represents partial updates to User fields.
// A nil field means "no change".
type UserPatch struct {
	Email       *string
	DisplayName *string
	Phone       *string
	Company     *string
}

// State is the session container.
// Invariant: Status == StatusAuthenticated exactly when Identity != nil.
// Transitions are value-returning so callers can never hold a half-applied
// state.
type State struct {
	Status    Status `json:"status"`
	Identity  *User  `json:"identity,omitempty"`
	IsLoading bool   `json:"isLoading"`
	LastError string `json:"lastError,omitempty"`
}

// Initial is the startup state: checking, until the stored session (if any)
// has been resolved.
func Initial() State {
	return State{Status: StatusChecking, IsLoading: true}
}

// IsAuthenticated reports whether an identity is present.
func (s State) IsAuthenticated() bool {
	return s.Identity != nil
}

// Begin marks a login/signup/session-check as in flight and clears any
// previous error.
func (s State) Begin() State {
	s.Status = StatusChecking
	s.IsLoading = true
	s.LastError = ""
	return s
}

// Succeed installs the identity.
func (s State) Succeed(u User) State {
	id := u
	return State{
		Status:   StatusAuthenticated,
		Identity: &id,
	}
}

// Fail records a failed attempt. The identity is dropped, never kept
// half-authenticated; the caller surfaces the message to the user.
func (s State) Fail(msg string) State {
	return State{
		Status:    StatusError,
		LastError: strings.TrimSpace(msg),
	}
}

// SignOut returns to anonymous unconditionally.
func (s State) SignOut() State {
	return State{Status: StatusAnonymous}
}

// Resolve ends the initial check without an identity.
func (s State) Resolve() State {
	return State{Status: StatusAnonymous}
}

// Merge applies a partial update to the identity.
// No-op when not authenticated.
func (s State) Merge(p UserPatch) State {
	if s.Identity == nil {
		return s
	}
	u := *s.Identity
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Company != nil {
		u.Company = strings.TrimSpace(*p.Company)
	}
	s.Identity = &u
	return s
}

// ClearError drops the last error message, keeping everything else.
func (s State) ClearError() State {
	s.LastError = ""
	if s.Status == StatusError {
		s.Status = StatusAnonymous
	}
	return s
}

// DefaultDisplayName derives a display name from the email local-part,
// used when signup supplies none.
func DefaultDisplayName(email string) string {
	e := strings.TrimSpace(email)
	if i := strings.Index(e, "@"); i > 0 {
		e = e[:i]
	}
	e = strings.ReplaceAll(e, ".", " ")
	return strings.TrimSpace(e)
}
