package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/application/usecase"
)

func newTestClient(t *testing.T, identityHandler, tokenHandler http.HandlerFunc) *FirebaseClient {
	t.Helper()
	idSrv := httptest.NewServer(identityHandler)
	t.Cleanup(idSrv.Close)
	tokSrv := httptest.NewServer(tokenHandler)
	t.Cleanup(tokSrv.Close)
	return NewFirebaseClient("test-key", nil).WithBaseURLs(idSrv.URL, tokSrv.URL)
}

func apiError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": code},
	})
}

func TestSignInSuccessEmitsSignedIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "uid-jane",
			"email":        "jane.doe@example.com",
			"idToken":      "id-token",
			"refreshToken": "rt-1",
			"expiresIn":    "3600",
		})
	}, nil)

	var events int32
	unsub := client.OnAuthStateChange(func(ev usecase.AuthEvent, sess *usecase.AuthSession) {
		if ev == usecase.AuthEventSignedIn && sess != nil && sess.UserID == "uid-jane" {
			atomic.AddInt32(&events, 1)
		}
	})
	defer unsub()

	sess, err := client.SignInWithPassword(context.Background(), "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, "uid-jane", sess.UserID)
	assert.Equal(t, "rt-1", sess.RefreshToken)
	assert.False(t, sess.ExpiresAt.IsZero())
	assert.Equal(t, int32(1), atomic.LoadInt32(&events))
}

func TestSignInErrorMapping(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"EMAIL_NOT_FOUND", usecase.ErrInvalidCredentials},
		{"INVALID_PASSWORD", usecase.ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", usecase.ErrInvalidCredentials},
		{"EMAIL_EXISTS", usecase.ErrEmailInUse},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : rest later", usecase.ErrIdentityUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				apiError(w, http.StatusBadRequest, tc.code)
			}, nil)

			_, err := client.SignInWithPassword(context.Background(), "a@b.co", "pw")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRefreshMapsExpiredToken(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		apiError(w, http.StatusBadRequest, "TOKEN_EXPIRED")
	})

	_, err := client.Refresh(context.Background(), "rt-stale")
	assert.ErrorIs(t, err, usecase.ErrSessionExpired)
}

func TestRefreshSuccess(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":       "uid-jane",
			"id_token":      "id-token-2",
			"refresh_token": "rt-2",
			"expires_in":    "3600",
		})
	})

	sess, err := client.Refresh(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-jane", sess.UserID)
	assert.Equal(t, "rt-2", sess.RefreshToken)
}

func TestSignOutEmitsSignedOutAndUnsubscribeStops(t *testing.T) {
	client := NewFirebaseClient("test-key", nil)

	var events int32
	unsub := client.OnAuthStateChange(func(ev usecase.AuthEvent, _ *usecase.AuthSession) {
		if ev == usecase.AuthEventSignedOut {
			atomic.AddInt32(&events, 1)
		}
	})

	require.NoError(t, client.SignOut(context.Background(), "uid-jane"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&events))

	unsub()
	require.NoError(t, client.SignOut(context.Background(), "uid-jane"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&events), "listener should not fire after unsubscribe")
}
