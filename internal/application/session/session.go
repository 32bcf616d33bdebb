// Package session tracks the per-user session: who is logged in, their
// evaluation flow, and the ephemeral state that a logout wipes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmt697/EcoTracker-Project/internal/application/saga"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session: not found")

// Session is one authenticated user session. It satisfies the accessor's
// auth-state contract through Authenticated().
type Session struct {
	mu sync.RWMutex

	token         string
	userID        string
	name          string
	authenticated bool
	startedAt     time.Time
	flow          *saga.UnlockFlow
}

// Token returns the opaque session token.
func (s *Session) Token() string {
	return s.token
}

// UserID returns the session owner's id.
func (s *Session) UserID() string {
	return s.userID
}

// Name returns the owner's display name.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Authenticated reports whether the session holds a verified login.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Flow returns the session's unlock flow.
func (s *Session) Flow() *saga.UnlockFlow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flow
}

// attachFlow binds the evaluation flow built for this session.
func (s *Session) attachFlow(flow *saga.UnlockFlow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = flow
}

// end wipes the session's ephemeral evaluation state.
func (s *Session) end() {
	s.mu.Lock()
	flow := s.flow
	s.authenticated = false
	s.mu.Unlock()

	if flow != nil {
		flow.EndSession()
	}
}

// ══════════════════════════════════════════════════════════════════════════
// MANAGER
// ══════════════════════════════════════════════════════════════════════════

// FlowFactory builds the unlock flow for a new session. The cmd wiring
// supplies it with the infrastructure pieces; the session is passed so the
// activity accessor can read the auth flag.
type FlowFactory func(userID string, sess *Session) *saga.UnlockFlow

// TokenGenerator produces opaque session tokens.
type TokenGenerator interface {
	GenerateID() string
}

// Manager owns the active sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  FlowFactory
	tokens   TokenGenerator
	logger   *slog.Logger
}

// NewManager creates a session manager.
func NewManager(factory FlowFactory, tokens TokenGenerator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		tokens:   tokens,
		logger:   logger,
	}
}

// Begin starts a session for an authenticated user: builds the flow,
// restores persisted unlock state, and registers the token.
func (m *Manager) Begin(ctx context.Context, userID, name string) (*Session, error) {
	sess := &Session{
		token:         m.tokens.GenerateID(),
		userID:        userID,
		name:          name,
		authenticated: true,
		startedAt:     time.Now().UTC(),
	}

	flow := m.factory(userID, sess)
	sess.attachFlow(flow)

	if err := flow.Restore(ctx); err != nil {
		// Persisted state is best-effort; a failed restore starts the
		// session with everything locked and retries on next login.
		m.logger.Warn("failed to restore unlock state", "user_id", userID, "error", err)
	}

	m.mu.Lock()
	m.sessions[sess.token] = sess
	m.mu.Unlock()

	// The authenticated event fires before this flow exists, so the login
	// trigger is requested here once the session is registered. Debounce
	// collapses it with any trigger the event reached in older sessions.
	flow.Trigger("login")

	m.logger.Info("session started", "user_id", userID)
	return sess, nil
}

// Get resolves a session token.
func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// End terminates a session: pending evaluation and notification state is
// wiped, persisted unlocks survive.
func (m *Manager) End(token string) error {
	m.mu.Lock()
	sess, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.end()
	return nil
}

// EndAll terminates every active session (shutdown path).
func (m *Manager) EndAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.end()
	}
}

// FlowsForUser returns the unlock flows of every active session owned by
// the user. The event handlers use it to route trigger events.
func (m *Manager) FlowsForUser(userID string) []*saga.UnlockFlow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flows := make([]*saga.UnlockFlow, 0, 1)
	for _, s := range m.sessions {
		if s.userID == userID && s.Flow() != nil {
			flows = append(flows, s.Flow())
		}
	}

	return flows
}

// TriggerAll requests a debounced evaluation pass in every active
// session. The periodic sweep uses it to catch predicates that became
// true through time passing (streaks crossing midnight).
func (m *Manager) TriggerAll(reason string) {
	m.mu.RLock()
	flows := make([]*saga.UnlockFlow, 0, len(m.sessions))
	for _, s := range m.sessions {
		if f := s.Flow(); f != nil {
			flows = append(flows, f)
		}
	}
	m.mu.RUnlock()

	for _, f := range flows {
		f.Trigger(reason)
	}
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
