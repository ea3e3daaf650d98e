// Package session owns the signed-in state of one browser request.
package session

import (
	"context"
	"log"
	"sync"

	"inquiry-dashboard/internal/backend"
)

// Manager is the single owner of the current session. It combines one
// session fetch with a change subscription: notifications always win, and the
// fetch result is dropped if a notification arrived first.
type Manager struct {
	client  backend.Client
	persist func(*backend.Session)

	mu       sync.RWMutex
	current  *backend.Session
	notified bool
	started  bool

	sub       backend.Subscription
	closeOnce sync.Once
}

type Option func(*Manager)

// WithPersist is called with the new session (nil when signed out) on every
// change notification.
func WithPersist(fn func(*backend.Session)) Option {
	return func(m *Manager) { m.persist = fn }
}

func NewManager(client backend.Client, opts ...Option) *Manager {
	m := &Manager{client: client}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to session changes and fetches the current session.
// A failed fetch counts as no session.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.sub = m.client.OnSessionChange(m.handleChange)

	sess, err := m.client.FetchSession(ctx)
	if err != nil {
		log.Printf("session fetch failed: %v", err)
		sess = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.notified {
		m.current = sess
	}
}

func (m *Manager) handleChange(ev backend.Event, sess *backend.Session) {
	m.mu.Lock()
	m.notified = true
	m.current = sess
	persist := m.persist
	m.mu.Unlock()

	if persist != nil {
		persist(sess)
	}
}

// Close unsubscribes from session changes. Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		if m.sub != nil {
			m.sub.Unsubscribe()
		}
	})
}

func (m *Manager) Client() backend.Client { return m.client }

func (m *Manager) Session() *backend.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) SignedIn() bool {
	return m.Session() != nil
}

func (m *Manager) User() *backend.User {
	s := m.Session()
	if s == nil {
		return nil
	}
	u := s.User
	return &u
}
