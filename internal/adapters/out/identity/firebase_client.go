package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"storefront/internal/application/usecase"
)

const (
	defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"
	defaultTokenBaseURL    = "https://securetoken.googleapis.com"
	requestTimeout         = 15 * time.Second
)

// FirebaseClient implements usecase.IdentityClient against the Firebase Auth
// REST API (password sign-in/sign-up, token refresh) plus the Admin SDK for
// server-side refresh-token revocation on sign-out.
//
// Auth-change events are fanned out to subscribed listeners after each
// successful sign-in/sign-up and after sign-out, mirroring the provider's
// notification stream.
type FirebaseClient struct {
	apiKey   string
	identity string // identitytoolkit base URL
	token    string // securetoken base URL
	httpc    *http.Client
	admin    *firebaseauth.Client // optional; revoke is skipped when nil

	mu        sync.Mutex
	listeners map[int]func(usecase.AuthEvent, *usecase.AuthSession)
	nextLst   int
}

func NewFirebaseClient(apiKey string, admin *firebaseauth.Client) *FirebaseClient {
	return &FirebaseClient{
		apiKey:    strings.TrimSpace(apiKey),
		identity:  defaultIdentityBaseURL,
		token:     defaultTokenBaseURL,
		httpc:     &http.Client{Timeout: requestTimeout},
		admin:     admin,
		listeners: map[int]func(usecase.AuthEvent, *usecase.AuthSession){},
	}
}

// WithBaseURLs overrides the Google endpoints (tests, emulator).
func (c *FirebaseClient) WithBaseURLs(identityBase, tokenBase string) *FirebaseClient {
	if s := strings.TrimRight(strings.TrimSpace(identityBase), "/"); s != "" {
		c.identity = s
	}
	if s := strings.TrimRight(strings.TrimSpace(tokenBase), "/"); s != "" {
		c.token = s
	}
	return c
}

// ----------------------------
// usecase.IdentityClient
// ----------------------------

func (c *FirebaseClient) SignInWithPassword(ctx context.Context, email, password string) (*usecase.AuthSession, error) {
	body := map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}
	sess, err := c.accountsCall(ctx, "accounts:signInWithPassword", body)
	if err != nil {
		return nil, err
	}
	c.emit(usecase.AuthEventSignedIn, sess)
	return sess, nil
}

func (c *FirebaseClient) SignUp(ctx context.Context, email, password, displayName string) (*usecase.AuthSession, error) {
	body := map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}
	if n := strings.TrimSpace(displayName); n != "" {
		body["displayName"] = n
	}
	sess, err := c.accountsCall(ctx, "accounts:signUp", body)
	if err != nil {
		return nil, err
	}
	c.emit(usecase.AuthEventSignedIn, sess)
	return sess, nil
}

func (c *FirebaseClient) SignOut(ctx context.Context, userID string) error {
	var err error
	if c.admin != nil && strings.TrimSpace(userID) != "" {
		err = c.admin.RevokeRefreshTokens(ctx, userID)
	}
	// Local sign-out happened either way; listeners must hear about it.
	c.emit(usecase.AuthEventSignedOut, nil)
	return err
}

func (c *FirebaseClient) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthSession, error) {
	rt := strings.TrimSpace(refreshToken)
	if rt == "" {
		return nil, usecase.ErrSessionExpired
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", rt)

	endpoint := fmt.Sprintf("%s/v1/token?key=%s", c.token, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrIdentityUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapAPIError(raw)
	}

	var out struct {
		UserID       string `json:"user_id"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrIdentityUnavailable, err)
	}

	return &usecase.AuthSession{
		UserID:       out.UserID,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    expiry(out.ExpiresIn),
	}, nil
}

func (c *FirebaseClient) OnAuthStateChange(fn func(usecase.AuthEvent, *usecase.AuthSession)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextLst
	c.nextLst++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// ----------------------------
// Internals
// ----------------------------

func (c *FirebaseClient) accountsCall(ctx context.Context, method string, body map[string]any) (*usecase.AuthSession, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", c.identity, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrIdentityUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapAPIError(raw)
	}

	var out struct {
		LocalID      string `json:"localId"`
		Email        string `json:"email"`
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrIdentityUnavailable, err)
	}

	return &usecase.AuthSession{
		UserID:       out.LocalID,
		Email:        out.Email,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    expiry(out.ExpiresIn),
	}, nil
}

func (c *FirebaseClient) emit(ev usecase.AuthEvent, sess *usecase.AuthSession) {
	c.mu.Lock()
	fns := make([]func(usecase.AuthEvent, *usecase.AuthSession), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(ev, sess)
	}
}

// mapAPIError translates identitytoolkit/securetoken error codes onto the
// session engine's taxonomy.
func mapAPIError(raw []byte) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return fmt.Errorf("%w: unrecognized response", usecase.ErrIdentityUnavailable)
	}

	code := body.Error.Message
	// codes may carry a suffix, e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
	if i := strings.IndexAny(code, " :"); i > 0 {
		code = code[:i]
	}

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return usecase.ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return usecase.ErrEmailInUse
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND":
		return usecase.ErrSessionExpired
	default:
		log.Printf("[identity] unmapped provider error code=%q", code)
		return fmt.Errorf("%w: %s", usecase.ErrIdentityUnavailable, code)
	}
}

func expiry(expiresIn string) time.Time {
	secs, err := strconv.Atoi(strings.TrimSpace(expiresIn))
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return time.Now().Add(time.Duration(secs) * time.Second)
}

var _ usecase.IdentityClient = (*FirebaseClient)(nil)
