package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	profiledom "storefront/internal/domain/profile"
	"storefront/internal/domain/session"
)

var (
	ErrAuthClosed = errors.New("auth: session engine closed")

	// ErrAttemptSuperseded is returned when a sign-out landed while a
	// login/signup was in flight. Policy: the sign-out wins and the late
	// result is discarded.
	ErrAttemptSuperseded = errors.New("auth: attempt superseded by sign-out")
)

const authEventTimeout = 10 * time.Second

// AuthUsecase is the session engine: it owns the session state, drives the
// login/signup/logout protocol against the identity provider, and keeps the
// persisted session blob in sync.
//
// Concurrency policy (at most one in-flight auth transition):
// - a second Login/Signup while one is in flight is rejected with
//   ErrAuthInFlight (single-slot guard, not a queue)
// - Logout is always accepted; it bumps the generation counter so a racing
//   in-flight login resolves to ErrAttemptSuperseded instead of
//   resurrecting the identity
// - results resolving after Close are dropped the same way
type AuthUsecase struct {
	idp      IdentityClient
	profiles profiledom.Repository
	store    SessionStore
	clock    Clock

	mu           sync.Mutex
	state        session.State
	refreshToken string
	inFlight     bool
	gen          uint64
	closed       bool
	unsubscribe  func()
}

func NewAuthUsecase(idp IdentityClient, profiles profiledom.Repository, store SessionStore) *AuthUsecase {
	return NewAuthUsecaseWithClock(idp, profiles, store, nil)
}

// NewAuthUsecaseWithClock is useful for tests.
func NewAuthUsecaseWithClock(idp IdentityClient, profiles profiledom.Repository, store SessionStore, clock Clock) *AuthUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	a := &AuthUsecase{
		idp:      idp,
		profiles: profiles,
		store:    store,
		clock:    clock,
		state:    session.Initial(),
	}
	a.unsubscribe = idp.OnAuthStateChange(a.handleAuthEvent)
	return a
}

// State returns a snapshot of the current session state.
func (a *AuthUsecase) State() session.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	if s.Identity != nil {
		u := *s.Identity
		s.Identity = &u
	}
	return s
}

// Restore resolves the initial "checking" state from the persisted session
// blob. Any failure here (no blob, expired token, profile gone) resolves to
// anonymous rather than error: nothing to toast at startup.
func (a *AuthUsecase) Restore(ctx context.Context) session.State {
	a.mu.Lock()
	if a.closed || a.inFlight {
		st := a.state
		a.mu.Unlock()
		return st
	}
	a.inFlight = true
	a.state = a.state.Begin()
	g := a.gen
	a.mu.Unlock()

	rec, err := a.store.Load()
	if err != nil {
		log.Printf("[auth] restore: session store read failed: %v", err)
	}
	if err != nil || rec == nil || strings.TrimSpace(rec.RefreshToken) == "" {
		return a.resolveAnonymous(g, false)
	}

	sess, err := a.idp.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		log.Printf("[auth] restore: stored session rejected: %v", err)
		return a.resolveAnonymous(g, true)
	}

	u, err := a.loadUser(ctx, sess)
	if err != nil {
		log.Printf("[auth] restore: %v", err)
		return a.resolveAnonymous(g, true)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false
	if a.closed || g != a.gen {
		return a.state
	}
	a.state = a.state.Succeed(u)
	a.persistLocked(sess.RefreshToken, u)
	return a.state
}

// Login authenticates against the identity provider, then loads the profile
// record. Both failures surface through the error state AND the returned
// error, so the caller can react (toast) without polling.
func (a *AuthUsecase) Login(ctx context.Context, email, password string) (session.User, error) {
	g, err := a.begin()
	if err != nil {
		return session.User{}, err
	}

	sess, err := a.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		a.fail(g, err)
		return session.User{}, err
	}

	u, err := a.loadUser(ctx, sess)
	if err != nil {
		a.fail(g, err)
		return session.User{}, err
	}

	return a.succeed(g, sess, u)
}

// Signup registers the account, creates its profile record, and signs the
// session in. An empty displayName defaults to the email local-part.
func (a *AuthUsecase) Signup(ctx context.Context, email, password, displayName string) (session.User, error) {
	g, err := a.begin()
	if err != nil {
		return session.User{}, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = session.DefaultDisplayName(email)
	}

	sess, err := a.idp.SignUp(ctx, email, password, name)
	if err != nil {
		a.fail(g, err)
		return session.User{}, err
	}

	prof := profiledom.Profile{
		ID:          sess.UserID,
		DisplayName: name,
		CreatedAt:   a.clock.Now(),
	}
	if err := a.profiles.Save(ctx, prof); err != nil {
		// Account exists but the profile write failed: treated as an auth
		// error, not a silent partial success.
		werr := fmt.Errorf("%w: %v", ErrProfileLoad, err)
		a.fail(g, werr)
		return session.User{}, werr
	}

	u := session.User{
		ID:          sess.UserID,
		Email:       sess.Email,
		DisplayName: prof.DisplayName,
		CreatedAt:   prof.CreatedAt,
	}
	return a.succeed(g, sess, u)
}

// Logout signs out remotely (fire and forget) and unconditionally returns the
// local state to anonymous. A remote failure is logged, never propagated:
// the user must not be stranded in an authenticated-looking state.
func (a *AuthUsecase) Logout(ctx context.Context) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.gen++
	var uid string
	if a.state.Identity != nil {
		uid = a.state.Identity.ID
	}
	a.state = a.state.SignOut()
	a.refreshToken = ""
	a.mu.Unlock()

	if uid != "" {
		if err := a.idp.SignOut(ctx, uid); err != nil {
			log.Printf("[auth] remote sign-out failed (state cleared anyway): %v", err)
		}
	}
	if err := a.store.Clear(); err != nil {
		log.Printf("[auth] session store clear failed: %v", err)
	}
}

// UpdateUser merges partial fields into the identity without contacting the
// identity provider. No-op when not authenticated.
func (a *AuthUsecase) UpdateUser(p session.UserPatch) (session.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || !a.state.IsAuthenticated() {
		return session.User{}, false
	}
	a.state = a.state.Merge(p)
	u := *a.state.Identity
	a.persistLocked(a.refreshToken, u)
	return u, true
}

// ClearError drops the last error message.
func (a *AuthUsecase) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = a.state.ClearError()
}

// Close unsubscribes the auth-change listener and discards any in-flight
// results. Idempotent.
func (a *AuthUsecase) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.gen++
	unsub := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// ----------------------------
// Internals
// ----------------------------

// begin acquires the single in-flight slot. The guard is a dedicated flag,
// not State.IsLoading: the initial "checking" state also reports loading but
// must not block the first login.
func (a *AuthUsecase) begin() (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0, ErrAuthClosed
	}
	if a.inFlight {
		return 0, ErrAuthInFlight
	}
	a.inFlight = true
	a.state = a.state.Begin()
	return a.gen, nil
}

func (a *AuthUsecase) fail(g uint64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false
	if a.closed || g != a.gen {
		return
	}
	a.state = a.state.Fail(err.Error())
}

func (a *AuthUsecase) succeed(g uint64, sess *AuthSession, u session.User) (session.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false
	if a.closed || g != a.gen {
		return session.User{}, ErrAttemptSuperseded
	}
	a.state = a.state.Succeed(u)
	a.persistLocked(sess.RefreshToken, u)
	return u, nil
}

func (a *AuthUsecase) resolveAnonymous(g uint64, clearStore bool) session.State {
	if clearStore {
		if err := a.store.Clear(); err != nil {
			log.Printf("[auth] session store clear failed: %v", err)
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false
	if a.closed || g != a.gen {
		return a.state
	}
	a.state = a.state.Resolve()
	return a.state
}

// loadUser resolves the profile record for an authenticated session.
// A failed lookup is an auth error (ErrProfileLoad), never a partial login.
func (a *AuthUsecase) loadUser(ctx context.Context, sess *AuthSession) (session.User, error) {
	prof, err := a.profiles.GetByID(ctx, sess.UserID)
	if err != nil {
		return session.User{}, fmt.Errorf("%w: %v", ErrProfileLoad, err)
	}
	return session.User{
		ID:          sess.UserID,
		Email:       sess.Email,
		DisplayName: prof.DisplayName,
		IsAdmin:     prof.IsAdmin,
		CreatedAt:   prof.CreatedAt,
	}, nil
}

// persistLocked writes the session blob. Caller holds a.mu.
// A write failure is logged, not propagated: persistence is best-effort,
// the in-memory state is the source of truth for this process.
func (a *AuthUsecase) persistLocked(refreshToken string, u session.User) {
	if strings.TrimSpace(refreshToken) != "" {
		a.refreshToken = refreshToken
	}
	rec := &SessionRecord{
		User:         u,
		RefreshToken: a.refreshToken,
		SavedAt:      a.clock.Now(),
	}
	if err := a.store.Save(rec); err != nil {
		log.Printf("[auth] session store write failed: %v", err)
	}
}

// handleAuthEvent applies external auth-change notifications.
func (a *AuthUsecase) handleAuthEvent(ev AuthEvent, sess *AuthSession) {
	switch ev {
	case AuthEventSignedOut:
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		a.gen++
		a.state = a.state.SignOut()
		a.refreshToken = ""
		a.mu.Unlock()
		if err := a.store.Clear(); err != nil {
			log.Printf("[auth] session store clear failed: %v", err)
		}

	case AuthEventSignedIn:
		if sess == nil {
			return
		}
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		if a.state.Identity != nil && a.state.Identity.ID == sess.UserID {
			// already signed in as this user (our own call raced the event)
			a.mu.Unlock()
			return
		}
		g := a.gen
		a.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), authEventTimeout)
		defer cancel()
		u, err := a.loadUser(ctx, sess)
		if err != nil {
			log.Printf("[auth] signed-in event dropped: %v", err)
			return
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if a.closed || g != a.gen {
			return
		}
		a.state = a.state.Succeed(u)
		a.persistLocked(sess.RefreshToken, u)
	}
}
