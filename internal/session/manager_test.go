package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"memopad/internal/backend"
	"memopad/internal/domain"
)

type fakeAuth struct {
	mu          sync.Mutex
	passwords   map[string]string
	ids         map[string]string
	current     *domain.User
	established bool
	signOutErr  error
	cbs         []func(*domain.User)
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		passwords: make(map[string]string),
		ids:       make(map[string]string),
	}
}

func (f *fakeAuth) addUser(email, password string) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[email] = password
	f.ids[email] = "id-" + email
	return &domain.User{ID: "id-" + email, Email: email}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.passwords[email]
	if !ok || stored != password {
		return nil, domain.ErrInvalidCredentials
	}
	user := &domain.User{ID: f.ids[email], Email: email}
	f.current = user
	return user, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (backend.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.passwords[email]; exists {
		return backend.SignUpResult{}, domain.ErrRegistrationFailed
	}
	f.passwords[email] = password
	f.ids[email] = "id-" + email
	user := &domain.User{ID: "id-" + email, Email: email}
	if f.established {
		f.current = user
	}
	return backend.SignUpResult{User: user, Established: f.established}, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = nil
	return f.signOutErr
}

func (f *fakeAuth) OnSessionChange(cb func(*domain.User)) func() {
	f.mu.Lock()
	f.cbs = append(f.cbs, cb)
	current := f.current
	f.mu.Unlock()
	cb(current)
	return func() {}
}

// notify simulates an externally-triggered session change, e.g. a
// remote sign-out pushed by the service.
func (f *fakeAuth) notify(user *domain.User) {
	f.mu.Lock()
	f.current = user
	cbs := append([]func(*domain.User){}, f.cbs...)
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(user)
	}
}

func TestManager_InitialStateIsUnknown(t *testing.T) {
	m := NewManager(newFakeAuth())

	if got := m.Current().Status; got != StatusUnknown {
		t.Errorf("initial status = %v, want StatusUnknown", got)
	}
	if m.CurrentUser() != nil {
		t.Error("CurrentUser() must be nil before resolution")
	}
}

func TestManager_StartResolvesUnknown(t *testing.T) {
	auth := newFakeAuth()
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	if got := m.Current().Status; got != StatusSignedOut {
		t.Errorf("status after resolution = %v, want StatusSignedOut", got)
	}
}

func TestManager_StartRestoresExistingSession(t *testing.T) {
	auth := newFakeAuth()
	auth.current = auth.addUser("a@x.com", "secret1")

	m := NewManager(auth)
	m.Start()
	defer m.Close()

	s := m.Current()
	if s.Status != StatusAuthenticated {
		t.Fatalf("status = %v, want StatusAuthenticated", s.Status)
	}
	if s.User.Email != "a@x.com" {
		t.Errorf("restored user = %q, want a@x.com", s.User.Email)
	}
}

func TestManager_SignIn(t *testing.T) {
	auth := newFakeAuth()
	auth.addUser("a@x.com", "secret1")
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	var observed []Status
	cancel := m.Subscribe(func(s Session) {
		observed = append(observed, s.Status)
	})
	defer cancel()

	user, err := m.SignIn(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if user.Email != "a@x.com" {
		t.Errorf("SignIn() user = %q, want a@x.com", user.Email)
	}

	// Transition is observable to subscribers by the time SignIn
	// returns.
	if observed[len(observed)-1] != StatusAuthenticated {
		t.Errorf("last observed status = %v, want StatusAuthenticated", observed[len(observed)-1])
	}
	if m.CurrentUser() == nil {
		t.Error("CurrentUser() nil after successful sign-in")
	}
}

func TestManager_SignIn_WrongPassword(t *testing.T) {
	auth := newFakeAuth()
	auth.addUser("a@x.com", "secret1")
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	_, err := m.SignIn(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
	}
	if got := m.Current().Status; got != StatusSignedOut {
		t.Errorf("status after failed sign-in = %v, want StatusSignedOut", got)
	}
}

func TestManager_SignUp_NoAutoSession(t *testing.T) {
	auth := newFakeAuth()
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	user, err := m.SignUp(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if user == nil || user.Email != "a@x.com" {
		t.Errorf("SignUp() user = %v, want a@x.com", user)
	}
	if got := m.Current().Status; got != StatusSignedOut {
		t.Errorf("status after sign-up = %v, want StatusSignedOut (service did not establish a session)", got)
	}
}

func TestManager_SignUp_ServiceEstablishesSession(t *testing.T) {
	auth := newFakeAuth()
	auth.established = true
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	if _, err := m.SignUp(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if got := m.Current().Status; got != StatusAuthenticated {
		t.Errorf("status = %v, want StatusAuthenticated when the service reports a session", got)
	}
}

func TestManager_SignUp_Duplicate(t *testing.T) {
	auth := newFakeAuth()
	auth.addUser("a@x.com", "secret1")
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	_, err := m.SignUp(context.Background(), "a@x.com", "other")
	if !errors.Is(err, domain.ErrRegistrationFailed) {
		t.Errorf("SignUp() error = %v, want ErrRegistrationFailed", err)
	}
}

func TestManager_SignOut_ClearsEvenWhenRemoteFails(t *testing.T) {
	auth := newFakeAuth()
	auth.addUser("a@x.com", "secret1")
	auth.signOutErr = errors.New("network down")

	m := NewManager(auth)
	m.Start()
	defer m.Close()

	if _, err := m.SignIn(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	m.SignOut(context.Background())

	if got := m.Current().Status; got != StatusSignedOut {
		t.Errorf("status after sign-out = %v, want StatusSignedOut despite remote failure", got)
	}
	if m.CurrentUser() != nil {
		t.Error("CurrentUser() must be nil after sign-out")
	}
}

func TestManager_RemoteInvalidation(t *testing.T) {
	auth := newFakeAuth()
	auth.addUser("a@x.com", "secret1")
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	if _, err := m.SignIn(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	auth.notify(nil)

	if got := m.Current().Status; got != StatusSignedOut {
		t.Errorf("status after remote invalidation = %v, want StatusSignedOut", got)
	}
}

func TestManager_SubscribeSeesCurrentState(t *testing.T) {
	auth := newFakeAuth()
	m := NewManager(auth)
	m.Start()
	defer m.Close()

	var first Session
	called := false
	cancel := m.Subscribe(func(s Session) {
		if !called {
			first = s
			called = true
		}
	})
	defer cancel()

	if !called {
		t.Fatal("Subscribe() must deliver the current state immediately")
	}
	if first.Status != StatusSignedOut {
		t.Errorf("first delivered status = %v, want StatusSignedOut", first.Status)
	}
}
