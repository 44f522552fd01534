package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerFixture(t *testing.T) (*SessionManager, *fakeIdentity) {
	t.Helper()
	idp := newFakeIdentity()
	mgr := NewSessionManager(func(sessionID string) (*AuthUsecase, error) {
		return NewAuthUsecase(idp, newMemProfiles(), &memSessionStore{}), nil
	})
	t.Cleanup(mgr.CloseAll)
	return mgr, idp
}

func TestManagerReusesEnginePerSession(t *testing.T) {
	mgr, _ := newManagerFixture(t)
	ctx := context.Background()

	a, err := mgr.Get(ctx, "sess-1")
	require.NoError(t, err)
	b, err := mgr.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := mgr.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, mgr.Len())
}

func TestManagerRejectsBlankSession(t *testing.T) {
	mgr, _ := newManagerFixture(t)
	_, err := mgr.Get(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrAuthClosed)
}

func TestManagerEvictClosesEngine(t *testing.T) {
	mgr, idp := newManagerFixture(t)
	ctx := context.Background()

	eng, err := mgr.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, 1, idp.listenerCount())

	mgr.Evict("sess-1")
	assert.Equal(t, 0, mgr.Len())
	assert.Equal(t, 0, idp.listenerCount(), "evicted engine should unsubscribe")

	_, err = eng.Login(ctx, "jane.doe@example.com", "pw")
	assert.ErrorIs(t, err, ErrAuthClosed)

	// Unknown ids are a no-op.
	mgr.Evict("sess-unknown")
}

func TestManagerCloseAll(t *testing.T) {
	mgr, idp := newManagerFixture(t)
	ctx := context.Background()

	_, err := mgr.Get(ctx, "sess-1")
	require.NoError(t, err)
	_, err = mgr.Get(ctx, "sess-2")
	require.NoError(t, err)

	mgr.CloseAll()
	assert.Equal(t, 0, mgr.Len())
	assert.Equal(t, 0, idp.listenerCount())

	_, err = mgr.Get(ctx, "sess-3")
	assert.ErrorIs(t, err, ErrAuthClosed)
}

func TestManagerFactoryFailure(t *testing.T) {
	boom := errors.New("no storage")
	mgr := NewSessionManager(func(string) (*AuthUsecase, error) { return nil, boom })
	t.Cleanup(mgr.CloseAll)

	_, err := mgr.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mgr.Len())
}
