package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
	profiledom "storefront/internal/domain/profile"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ----------------------------
// cart.Repository fake
// ----------------------------

type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*cartdom.Cart
	getErr    error
	upsertErr error
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*cartdom.Cart{}}
}

func (r *memCartRepo) GetByUserID(_ context.Context, userID string) (*cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Lines = append([]cartdom.Line(nil), c.Lines...)
	return &cp, nil
}

func (r *memCartRepo) Upsert(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	cp := *c
	cp.Lines = append([]cartdom.Line(nil), c.Lines...)
	r.carts[c.ID] = &cp
	return nil
}

func (r *memCartRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

// ----------------------------
// order.Repository / order.Mirror fakes
// ----------------------------

type memOrderRepo struct {
	mu        sync.Mutex
	orders    []orderdom.Order
	createErr error
}

func (r *memOrderRepo) Create(_ context.Context, o *orderdom.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.orders = append(r.orders, *o)
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			o := r.orders[i]
			return &o, nil
		}
	}
	return nil, orderdom.ErrNotFound
}

func (r *memOrderRepo) ListByUserID(_ context.Context, userID string) ([]orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdom.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}

type recordingMirror struct {
	mu     sync.Mutex
	orders []orderdom.Order
	err    error
}

func (m *recordingMirror) MirrorOrder(_ context.Context, o *orderdom.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, *o)
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string // "to|subject"
	err  error
}

func (m *recordingMailer) Send(_ context.Context, _, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

// ----------------------------
// profile.Repository fake
// ----------------------------

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]profiledom.Profile
	getErr   error
	saveErr  error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]profiledom.Profile{}}
}

func (r *memProfiles) GetByID(_ context.Context, id string) (profiledom.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return profiledom.Profile{}, r.getErr
	}
	p, ok := r.profiles[id]
	if !ok {
		return profiledom.Profile{}, profiledom.ErrNotFound
	}
	return p, nil
}

func (r *memProfiles) Save(_ context.Context, p profiledom.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.profiles[p.ID] = p
	return nil
}

// ----------------------------
// SessionStore fake
// ----------------------------

type memSessionStore struct {
	mu       sync.Mutex
	rec      *SessionRecord
	saves    int
	clears   int
	saveErr  error
	clearErr error
}

func (s *memSessionStore) Load() (*SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	cp := *s.rec
	return &cp, nil
}

func (s *memSessionStore) Save(rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *rec
	s.rec = &cp
	s.saves++
	return nil
}

func (s *memSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.rec = nil
	return nil
}

// ----------------------------
// IdentityClient fake
// ----------------------------

type fakeAccount struct {
	uid      string
	password string
}

type fakeIdentity struct {
	mu        sync.Mutex
	accounts  map[string]fakeAccount // email -> account
	tokens    map[string]*AuthSession
	nextUID   int
	listeners map[int]func(AuthEvent, *AuthSession)
	nextLst   int

	signInErr   error
	signUpErr   error
	signOutErr  error
	refreshErr  error
	signOutHits int

	// when set, SignInWithPassword blocks until the channel is closed
	signInGate chan struct{}
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		accounts:  map[string]fakeAccount{},
		tokens:    map[string]*AuthSession{},
		listeners: map[int]func(AuthEvent, *AuthSession){},
	}
}

func (f *fakeIdentity) addAccount(email, password, uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = fakeAccount{uid: uid, password: password}
}

func (f *fakeIdentity) newSession(email, uid string) *AuthSession {
	sess := &AuthSession{
		UserID:       uid,
		Email:        email,
		IDToken:      "idt-" + uid,
		RefreshToken: "rt-" + uid,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	f.tokens[sess.RefreshToken] = sess
	return sess
}

func (f *fakeIdentity) SignInWithPassword(_ context.Context, email, password string) (*AuthSession, error) {
	f.mu.Lock()
	gate := f.signInGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return nil, ErrInvalidCredentials
	}
	return f.newSession(email, acc.uid), nil
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password, _ string) (*AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if _, ok := f.accounts[email]; ok {
		return nil, ErrEmailInUse
	}
	f.nextUID++
	uid := fmt.Sprintf("uid-%d", f.nextUID)
	f.accounts[email] = fakeAccount{uid: uid, password: password}
	return f.newSession(email, uid), nil
}

func (f *fakeIdentity) SignOut(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutHits++
	return f.signOutErr
}

func (f *fakeIdentity) Refresh(_ context.Context, refreshToken string) (*AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	sess, ok := f.tokens[refreshToken]
	if !ok {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

func (f *fakeIdentity) OnAuthStateChange(fn func(AuthEvent, *AuthSession)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextLst
	f.nextLst++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeIdentity) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// emit delivers an auth-change event to all listeners synchronously.
func (f *fakeIdentity) emit(ev AuthEvent, sess *AuthSession) {
	f.mu.Lock()
	fns := make([]func(AuthEvent, *AuthSession), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev, sess)
	}
}
