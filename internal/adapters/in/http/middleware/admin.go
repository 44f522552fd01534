package middleware

import (
	"log"
	"net/http"

	profiledom "storefront/internal/domain/profile"
)

// AdminOnly gates a handler on the caller's profile having the admin flag.
// Must run after UserAuthMiddleware.
type AdminOnly struct {
	Profiles profiledom.Repository
}

func (m *AdminOnly) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Profiles == nil {
			http.Error(w, "admin middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		uid, ok := CurrentUserUID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := m.Profiles.GetByID(r.Context(), uid)
		if err != nil {
			log.Printf("[admin] profile lookup failed uid=%s err=%v", uid, err)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if !p.IsAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
