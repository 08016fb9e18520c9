// Package session holds the signed-in user and bearer token on the client
// and keeps them in durable storage between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dukerupert/familist/internal/model"
)

var (
	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = errors.New("not signed in")
	// ErrNoAuthenticator is returned by Login and Register before an
	// Authenticator has been set.
	ErrNoAuthenticator = errors.New("no authenticator")
)

// Snapshot is a copy of the session at one point in time. Token is set if
// and only if User is set.
type Snapshot struct {
	User  *model.User
	Token string
}

func (s Snapshot) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Authenticator performs the backend calls behind Login and Register.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Register(ctx context.Context, email, password, name string) (*model.User, string, error)
}

type Manager struct {
	mu      sync.RWMutex
	user    *model.User
	token   string
	loading bool

	storage Storage
	auth    Authenticator
	subs    listeners[Snapshot]
}

// NewManager returns a Manager in the loading state. Call Load before use.
func NewManager(storage Storage, auth Authenticator) *Manager {
	return &Manager{storage: storage, auth: auth, loading: true}
}

// SetAuthenticator replaces the backend used by Login and Register.
func (m *Manager) SetAuthenticator(auth Authenticator) {
	m.mu.Lock()
	m.auth = auth
	m.mu.Unlock()
}

// Load rehydrates the session from storage. A stored token without a
// readable user (or the reverse) is discarded.
func (m *Manager) Load() error {
	token, hasToken, err := m.storage.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	raw, hasUser, err := m.storage.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	var user *model.User
	if hasToken && hasUser && token != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			user = &u
		}
	}
	if user == nil {
		token = ""
		if hasToken || hasUser {
			if err := m.storage.Delete(KeyToken, KeyUser); err != nil {
				return fmt.Errorf("discard partial session: %w", err)
			}
		}
	}

	m.mu.Lock()
	m.user, m.token, m.loading = user, token, false
	m.mu.Unlock()
	m.notify()
	return nil
}

// Loading reports whether Load has not completed yet.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{Token: m.token}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Token returns the bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.RLock()
	auth := m.auth
	m.mu.RUnlock()
	if auth == nil {
		return fmt.Errorf("login: %w", ErrNoAuthenticator)
	}

	user, token, err := auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.set(user, token)
}

func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	m.mu.RLock()
	auth := m.auth
	m.mu.RUnlock()
	if auth == nil {
		return fmt.Errorf("register: %w", ErrNoAuthenticator)
	}

	user, token, err := auth.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	return m.set(user, token)
}

// Logout signs the user out and removes the stored credentials.
func (m *Manager) Logout() error {
	return m.clear()
}

// Clear drops the session after the backend rejected the token. Errors
// removing the stored copy are ignored; memory is cleared regardless.
func (m *Manager) Clear() {
	_ = m.clear()
}

func (m *Manager) clear() error {
	err := m.storage.Delete(KeyToken, KeyUser)

	m.mu.Lock()
	m.user, m.token = nil, ""
	m.mu.Unlock()
	m.notify()

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// UpdateUser replaces the stored user, e.g. after joining a family.
func (m *Manager) UpdateUser(user *model.User) error {
	if user == nil {
		return errors.New("update user: nil user")
	}
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token == "" {
		return ErrNoSession
	}
	return m.set(user, token)
}

// UpdateToken replaces the bearer token and keeps the user.
func (m *Manager) UpdateToken(token string) error {
	if token == "" {
		return errors.New("update token: empty token")
	}
	m.mu.RLock()
	user := m.user
	m.mu.RUnlock()
	if user == nil {
		return ErrNoSession
	}
	return m.set(user, token)
}

// Replace swaps user and token in a single storage write. Family create and
// join return both, and neither may be stored without the other.
func (m *Manager) Replace(user *model.User, token string) error {
	if !m.Snapshot().Authenticated() {
		return ErrNoSession
	}
	return m.set(user, token)
}

func (m *Manager) set(user *model.User, token string) error {
	if user == nil || token == "" {
		return errors.New("set session: user and token are both required")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.storage.Set(map[string]string{KeyToken: token, KeyUser: string(data)}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	u := *user
	m.mu.Lock()
	m.user, m.token = &u, token
	m.mu.Unlock()
	m.notify()
	return nil
}

// Subscribe calls fn after every session change until the returned
// function is called.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return m.subs.add(fn)
}

func (m *Manager) notify() {
	m.subs.emit(m.Snapshot())
}

// listeners is a set of callbacks invoked synchronously in registration
// order.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.next
	l.next++
	l.fns = append(l.fns, listener[T]{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, ln := range l.fns {
			if ln.id == id {
				l.fns = append(l.fns[:i:i], l.fns[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	fns := make([]listener[T], len(l.fns))
	copy(fns, l.fns)
	l.mu.Unlock()

	for _, ln := range fns {
		ln.fn(v)
	}
}
