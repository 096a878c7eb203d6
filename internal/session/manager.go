// Package session owns the process-wide authentication state. The
// Manager is the sole source of truth for who is acting: dependents
// observe its transitions instead of polling shared globals.
package session

import (
	"context"
	"sync"

	"memopad/internal/backend"
	"memopad/internal/domain"
)

type Status int

const (
	// StatusUnknown is the state before the initial asynchronous
	// resolution completes. It is distinct from SignedOut so the UI
	// neither flashes unauthenticated content nor redirects
	// prematurely.
	StatusUnknown Status = iota
	StatusSignedOut
	StatusSigningIn
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusSignedOut:
		return "signed_out"
	case StatusSigningIn:
		return "signing_in"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

type Session struct {
	Status Status
	User   *domain.User
}

type Manager struct {
	auth backend.AuthAPI

	mu          sync.RWMutex
	session     Session
	subs        map[int]func(Session)
	nextSub     int
	cancelWatch func()
}

func NewManager(auth backend.AuthAPI) *Manager {
	return &Manager{
		auth:    auth,
		session: Session{Status: StatusUnknown},
		subs:    make(map[int]func(Session)),
	}
}

// Start registers for external session changes. The first notification
// resolves the initial Unknown state; later ones handle remote
// invalidation (expired token, sign-out from another device).
func (m *Manager) Start() {
	m.mu.Lock()
	if m.cancelWatch != nil {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	cancel := m.auth.OnSessionChange(func(user *domain.User) {
		if user != nil {
			m.setSession(Session{Status: StatusAuthenticated, User: user})
		} else {
			m.setSession(Session{Status: StatusSignedOut})
		}
	})

	m.mu.Lock()
	m.cancelWatch = cancel
	m.mu.Unlock()
}

func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.cancelWatch
	m.cancelWatch = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// SignIn authenticates against the service. On success the transition
// to Authenticated is visible to all subscribers before SignIn
// returns. A rejection leaves the session SignedOut.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	m.setSession(Session{Status: StatusSigningIn})

	user, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		m.setSession(Session{Status: StatusSignedOut})
		return nil, err
	}

	m.setSession(Session{Status: StatusAuthenticated, User: user})
	return user, nil
}

// SignUp registers a new account. Whether a session is established
// afterwards is the service's call; the manager reflects whatever the
// service reports and never assumes authentication occurred.
func (m *Manager) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	result, err := m.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if result.Established {
		m.setSession(Session{Status: StatusAuthenticated, User: result.User})
	} else {
		m.setSession(Session{Status: StatusSignedOut})
	}

	return result.User, nil
}

// SignOut clears the session unconditionally. The remote call may
// fail; local state must never remain authenticated once the user has
// asked to leave.
func (m *Manager) SignOut(ctx context.Context) {
	_ = m.auth.SignOut(ctx)
	m.setSession(Session{Status: StatusSignedOut})
}

// CurrentUser is a pure read; no I/O.
func (m *Manager) CurrentUser() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Subscribe registers fn for session transitions and invokes it once
// immediately with the current state. The returned func cancels the
// subscription.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	current := m.session
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setSession(s Session) {
	m.mu.Lock()
	if m.session.Status == s.Status && m.session.User == s.User {
		m.mu.Unlock()
		return
	}
	m.session = s
	subs := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
