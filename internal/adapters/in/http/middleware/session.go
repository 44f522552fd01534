package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionCookieName carries the opaque browser-session id that keys the
// per-session auth engine. It is not an auth token.
const SessionCookieName = "sf_session"

// context keys use a private type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var (
	ctxKeySessionID = ctxKey{name: "sessionId"}
	ctxKeyUID       = ctxKey{name: "uid"}
	ctxKeyEmail     = ctxKey{name: "email"}
)

// Session ensures every request carries a session id, minting a cookie when
// none is present, and stores the id in the request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(SessionCookieName); err == nil {
			sid = strings.TrimSpace(c.Value)
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySessionID, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentSessionID returns the session id set by Session.
func CurrentSessionID(r *http.Request) (string, bool) {
	v, ok := r.Context().Value(ctxKeySessionID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
