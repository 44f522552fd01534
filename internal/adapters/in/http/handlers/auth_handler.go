package handlers

import (
	"errors"
	"net/http"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
	"storefront/internal/domain/session"
)

// AuthHandler drives the per-session auth engine:
//
//	GET   /auth/session
//	POST  /auth/login
//	POST  /auth/signup
//	POST  /auth/logout
//	PATCH /auth/me
type AuthHandler struct {
	sessions *usecase.SessionManager
}

func NewAuthHandler(sessions *usecase.SessionManager) http.Handler {
	return &AuthHandler{sessions: sessions}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	eng, ok := h.engine(w, r)
	if !ok {
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/auth/session":
		writeJSON(w, http.StatusOK, eng.State())
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		h.login(w, r, eng)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/signup":
		h.signup(w, r, eng)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/logout":
		eng.Logout(r.Context())
		writeJSON(w, http.StatusOK, eng.State())
	case r.Method == http.MethodPatch && r.URL.Path == "/auth/me":
		h.updateMe(w, r, eng)
	default:
		notFound(w)
	}
}

func (h *AuthHandler) engine(w http.ResponseWriter, r *http.Request) (*usecase.AuthUsecase, bool) {
	sid, ok := middleware.CurrentSessionID(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "session middleware missing")
		return nil, false
	}
	eng, err := h.sessions.Get(r.Context(), sid)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session unavailable")
		return nil, false
	}
	return eng, true
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, eng *usecase.AuthUsecase) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := usecase.ValidateLogin(in.Email, in.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := eng.Login(r.Context(), in.Email, in.Password); err != nil {
		writeAuthErr(w, eng, err)
		return
	}
	writeJSON(w, http.StatusOK, eng.State())
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, eng *usecase.AuthUsecase) {
	var in struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := usecase.ValidateSignup(in.Email, in.Password, in.DisplayName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := eng.Signup(r.Context(), in.Email, in.Password, in.DisplayName); err != nil {
		writeAuthErr(w, eng, err)
		return
	}
	writeJSON(w, http.StatusCreated, eng.State())
}

func (h *AuthHandler) updateMe(w http.ResponseWriter, r *http.Request, eng *usecase.AuthUsecase) {
	var in struct {
		DisplayName *string `json:"displayName"`
		Phone       *string `json:"phone"`
		Company     *string `json:"company"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, ok := eng.UpdateUser(sessionPatch(in.DisplayName, in.Phone, in.Company))
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func sessionPatch(displayName, phone, company *string) session.UserPatch {
	return session.UserPatch{
		DisplayName: displayName,
		Phone:       phone,
		Company:     company,
	}
}

func writeAuthErr(w http.ResponseWriter, eng *usecase.AuthUsecase, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, usecase.ErrEmailInUse):
		code = http.StatusConflict
	case errors.Is(err, usecase.ErrAuthInFlight), errors.Is(err, usecase.ErrAttemptSuperseded):
		code = http.StatusConflict
	case errors.Is(err, usecase.ErrIdentityUnavailable):
		code = http.StatusServiceUnavailable
	case errors.Is(err, usecase.ErrAuthClosed):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"error": err.Error(),
		"state": eng.State(),
	})
}
