package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profiledom "storefront/internal/domain/profile"
	"storefront/internal/domain/session"
)

var authT0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type authFixture struct {
	idp      *fakeIdentity
	profiles *memProfiles
	store    *memSessionStore
	uc       *AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		idp:      newFakeIdentity(),
		profiles: newMemProfiles(),
		store:    &memSessionStore{},
	}
	f.idp.addAccount("jane.doe@example.com", "s3cret-pw", "uid-jane")
	f.profiles.profiles["uid-jane"] = profiledom.Profile{
		ID:          "uid-jane",
		DisplayName: "Jane",
		IsAdmin:     true,
		CreatedAt:   authT0.Add(-24 * time.Hour),
	}
	f.uc = NewAuthUsecaseWithClock(f.idp, f.profiles, f.store, fixedClock{t: authT0})
	f.uc.Restore(context.Background()) // resolve the initial check (no stored session)
	t.Cleanup(f.uc.Close)
	return f
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)

	u, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)

	assert.Equal(t, "uid-jane", u.ID)
	assert.Equal(t, "Jane", u.DisplayName)
	assert.True(t, u.IsAdmin)

	st := f.uc.State()
	assert.Equal(t, session.StatusAuthenticated, st.Status)
	assert.True(t, st.IsAuthenticated())
	require.NotNil(t, st.Identity)
	assert.False(t, st.IsLoading)

	// session blob written on the successful transition
	rec, err := f.store.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "uid-jane", rec.User.ID)
	assert.Equal(t, "rt-uid-jane", rec.RefreshToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	st := f.uc.State()
	assert.Equal(t, session.StatusError, st.Status)
	assert.False(t, st.IsAuthenticated())
	assert.NotEmpty(t, st.LastError)
}

func TestLoginErrorIsNotSticky(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "wrong")
	require.Error(t, err)

	u, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, "uid-jane", u.ID)
	assert.True(t, f.uc.State().IsAuthenticated())
	assert.Empty(t, f.uc.State().LastError)
}

func TestLoginProfileLoadFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.idp.addAccount("ghost@example.com", "s3cret-pw", "uid-ghost") // no profile row

	_, err := f.uc.Login(context.Background(), "ghost@example.com", "s3cret-pw")
	require.ErrorIs(t, err, ErrProfileLoad)

	st := f.uc.State()
	assert.Equal(t, session.StatusError, st.Status)
	assert.False(t, st.IsAuthenticated())
}

func TestLogoutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)

	f.idp.signOutErr = assert.AnError
	f.uc.Logout(context.Background())

	st := f.uc.State()
	assert.Equal(t, session.StatusAnonymous, st.Status)
	assert.False(t, st.IsAuthenticated())
	assert.Nil(t, st.Identity)
	assert.Equal(t, 1, f.idp.signOutHits)

	rec, _ := f.store.Load()
	assert.Nil(t, rec)
}

func TestSecondLoginWhileInFlightIsRejected(t *testing.T) {
	f := newAuthFixture(t)
	gate := make(chan struct{})
	f.idp.signInGate = gate

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
		done <- err
	}()

	// wait until the first attempt holds the slot
	require.Eventually(t, func() bool {
		return f.uc.State().IsLoading
	}, time.Second, time.Millisecond)

	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, ErrAuthInFlight)

	close(gate)
	require.NoError(t, <-done)
	assert.True(t, f.uc.State().IsAuthenticated())
}

func TestLogoutWinsOverInFlightLogin(t *testing.T) {
	f := newAuthFixture(t)
	gate := make(chan struct{})
	f.idp.signInGate = gate

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return f.uc.State().IsLoading
	}, time.Second, time.Millisecond)

	f.uc.Logout(context.Background())
	close(gate)

	assert.ErrorIs(t, <-done, ErrAttemptSuperseded)
	st := f.uc.State()
	assert.Equal(t, session.StatusAnonymous, st.Status)
	assert.False(t, st.IsAuthenticated())
}

func TestCloseDropsLateResults(t *testing.T) {
	f := newAuthFixture(t)
	gate := make(chan struct{})
	f.idp.signInGate = gate

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return f.uc.State().IsLoading
	}, time.Second, time.Millisecond)

	f.uc.Close()
	close(gate)

	assert.ErrorIs(t, <-done, ErrAttemptSuperseded)
	assert.False(t, f.uc.State().IsAuthenticated())
}

func TestSignupDefaultsDisplayNameFromEmail(t *testing.T) {
	f := newAuthFixture(t)

	u, err := f.uc.Signup(context.Background(), "john.smith@example.com", "s3cret-pw", "")
	require.NoError(t, err)

	assert.Equal(t, "john smith", u.DisplayName)
	assert.True(t, f.uc.State().IsAuthenticated())

	// profile row created
	p, err := f.profiles.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "john smith", p.DisplayName)
	assert.False(t, p.IsAdmin)
	assert.Equal(t, authT0, p.CreatedAt)
}

func TestSignupEmailInUse(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.uc.Signup(context.Background(), "jane.doe@example.com", "s3cret-pw", "Jane")
	require.ErrorIs(t, err, ErrEmailInUse)
	assert.Equal(t, session.StatusError, f.uc.State().Status)
}

func TestSignupProfileWriteFailureIsAuthError(t *testing.T) {
	f := newAuthFixture(t)
	f.profiles.saveErr = assert.AnError

	_, err := f.uc.Signup(context.Background(), "new@example.com", "s3cret-pw", "New")
	require.ErrorIs(t, err, ErrProfileLoad)
	assert.False(t, f.uc.State().IsAuthenticated())
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)

	phone := "+27110000000"
	u, ok := f.uc.UpdateUser(session.UserPatch{Phone: &phone})
	require.True(t, ok)
	assert.Equal(t, "+27110000000", u.Phone)
	assert.Equal(t, "Jane", u.DisplayName)

	rec, _ := f.store.Load()
	require.NotNil(t, rec)
	assert.Equal(t, "+27110000000", rec.User.Phone)
}

func TestUpdateUserNoopWhenAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	f.uc.Logout(context.Background())

	name := "Nobody"
	_, ok := f.uc.UpdateUser(session.UserPatch{DisplayName: &name})
	assert.False(t, ok)
}

func TestRestoreFromStoredSession(t *testing.T) {
	f := newAuthFixture(t)
	// seed a prior session
	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)
	f.uc.Close()

	// fresh engine over the same store
	uc2 := NewAuthUsecaseWithClock(f.idp, f.profiles, f.store, fixedClock{t: authT0})
	defer uc2.Close()

	st := uc2.Restore(context.Background())
	assert.Equal(t, session.StatusAuthenticated, st.Status)
	require.NotNil(t, st.Identity)
	assert.Equal(t, "uid-jane", st.Identity.ID)
}

func TestRestoreWithoutStoredSession(t *testing.T) {
	f := newAuthFixture(t)

	st := f.uc.Restore(context.Background())
	assert.Equal(t, session.StatusAnonymous, st.Status)
	assert.False(t, st.IsAuthenticated())
	assert.False(t, st.IsLoading)
}

func TestRestoreExpiredSessionResolvesAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	f.store.rec = &SessionRecord{
		User:         session.User{ID: "uid-jane"},
		RefreshToken: "rt-gone",
		SavedAt:      authT0,
	}

	st := f.uc.Restore(context.Background())
	assert.Equal(t, session.StatusAnonymous, st.Status)
	// rejected blob is cleared
	rec, _ := f.store.Load()
	assert.Nil(t, rec)
}

func TestExternalSignedInEvent(t *testing.T) {
	f := newAuthFixture(t)

	f.idp.emit(AuthEventSignedIn, &AuthSession{
		UserID:       "uid-jane",
		Email:        "jane.doe@example.com",
		RefreshToken: "rt-uid-jane",
	})

	st := f.uc.State()
	assert.Equal(t, session.StatusAuthenticated, st.Status)
	require.NotNil(t, st.Identity)
	assert.Equal(t, "Jane", st.Identity.DisplayName)
}

func TestExternalSignedOutEvent(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.uc.Login(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)

	f.idp.emit(AuthEventSignedOut, nil)

	assert.Equal(t, session.StatusAnonymous, f.uc.State().Status)
	rec, _ := f.store.Load()
	assert.Nil(t, rec)
}

func TestCloseUnsubscribesListener(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, 1, f.idp.listenerCount())

	f.uc.Close()
	assert.Equal(t, 0, f.idp.listenerCount())

	// idempotent
	f.uc.Close()
	assert.Equal(t, 0, f.idp.listenerCount())
}

func TestEventAfterCloseIsIgnored(t *testing.T) {
	f := newAuthFixture(t)
	handler := f.uc.handleAuthEvent
	f.uc.Close()

	// deliver directly, as if the adapter raced the unsubscribe
	handler(AuthEventSignedIn, &AuthSession{UserID: "uid-jane", RefreshToken: "rt-uid-jane"})

	assert.False(t, f.uc.State().IsAuthenticated())
}
