package usecase

import (
	"context"
	"log"
	"strings"
	"sync"
)

// EngineFactory builds a session engine for one browser session. The session
// id keys the engine's persisted blob, so two sessions never share storage.
type EngineFactory func(sessionID string) (*AuthUsecase, error)

// SessionManager keeps one session engine per browser session (cookie). An
// engine is created lazily on first use and restored from its stored blob;
// it then lives until the session is evicted or the manager shuts down.
type SessionManager struct {
	factory EngineFactory

	mu      sync.Mutex
	engines map[string]*AuthUsecase
	closed  bool
}

func NewSessionManager(factory EngineFactory) *SessionManager {
	return &SessionManager{
		factory: factory,
		engines: map[string]*AuthUsecase{},
	}
}

// Get returns the engine for the given session, creating and restoring it on
// first use.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (*AuthUsecase, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrAuthClosed
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrAuthClosed
	}
	if eng, ok := m.engines[sessionID]; ok {
		m.mu.Unlock()
		return eng, nil
	}
	m.mu.Unlock()

	// Build outside the lock; factory may hit storage.
	eng, err := m.factory(sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		eng.Close()
		return nil, ErrAuthClosed
	}
	if racer, ok := m.engines[sessionID]; ok {
		// Another request won the race; keep theirs.
		m.mu.Unlock()
		eng.Close()
		return racer, nil
	}
	m.engines[sessionID] = eng
	m.mu.Unlock()

	eng.Restore(ctx)
	return eng, nil
}

// Evict tears down the engine for one session. Safe to call for unknown ids.
func (m *SessionManager) Evict(sessionID string) {
	m.mu.Lock()
	eng, ok := m.engines[sessionID]
	delete(m.engines, sessionID)
	m.mu.Unlock()
	if ok {
		eng.Close()
	}
}

// Len reports the number of live engines.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}

// CloseAll tears down every engine. The manager rejects new sessions after.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	engines := m.engines
	m.engines = map[string]*AuthUsecase{}
	m.mu.Unlock()

	for id, eng := range engines {
		eng.Close()
		log.Printf("[session] closed engine session=%s", id)
	}
}
