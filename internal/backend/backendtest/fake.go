// Package backendtest provides an in-memory backend.Client for tests.
package backendtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/models"
)

// UpdateCall records one Update request.
type UpdateCall struct {
	Table  string
	Fields map[string]any
	Filter backend.Filter
}

// Store is the shared state behind every Client it creates.
type Store struct {
	mu sync.Mutex

	rows      []models.Inquiry
	passwords map[string]string
	tokens    map[string]backend.User

	FetchErr   error
	SignOutErr error
	SelectErr  error
	// UpdateErr is consulted before every update; a non-nil result fails it.
	UpdateErr func(fields map[string]any) error

	Selects int
	Updates []UpdateCall
}

func NewStore(rows ...models.Inquiry) *Store {
	return &Store{
		rows:      rows,
		passwords: map[string]string{},
		tokens:    map[string]backend.User{},
	}
}

// AddUser registers credentials accepted by SignInWithPassword.
func (s *Store) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[email] = password
}

// IssueSession creates a valid session for email without going through sign-in.
func (s *Store) IssueSession(email string) *backend.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

func (s *Store) issueLocked(email string) *backend.Session {
	user := backend.User{ID: "uid-" + email, Email: email}
	token := fmt.Sprintf("token-%s-%d", email, len(s.tokens)+1)
	s.tokens[token] = user
	return &backend.Session{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user,
	}
}

func (s *Store) Rows() []models.Inquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Inquiry, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Store) Factory() backend.Factory {
	return func(stored *backend.Session) backend.Client {
		return s.Client(stored)
	}
}

func (s *Store) Client(stored *backend.Session) *Client {
	return &Client{store: s, current: stored}
}

// Client is a per-request view of the store, holding its own session.
type Client struct {
	store     *Store
	listeners backend.Listeners

	mu      sync.Mutex
	current *backend.Session
}

func (c *Client) Listeners() int { return c.listeners.Len() }

func (c *Client) FetchSession(ctx context.Context) (*backend.Session, error) {
	c.store.mu.Lock()
	fetchErr := c.store.FetchErr
	c.store.mu.Unlock()
	if fetchErr != nil {
		return nil, fetchErr
	}

	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur == nil {
		return nil, nil
	}

	c.store.mu.Lock()
	_, ok := c.store.tokens[cur.AccessToken]
	c.store.mu.Unlock()
	if !ok || cur.Expired(time.Now()) {
		c.setSession(nil)
		c.listeners.Notify(backend.EventSignedOut, nil)
		return nil, nil
	}
	return cur, nil
}

func (c *Client) OnSessionChange(fn func(backend.Event, *backend.Session)) backend.Subscription {
	return c.listeners.Subscribe(fn)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.User, error) {
	c.store.mu.Lock()
	want, ok := c.store.passwords[email]
	if !ok || want != password {
		c.store.mu.Unlock()
		return nil, &backend.AuthError{Status: 400, Message: "Invalid login credentials"}
	}
	sess := c.store.issueLocked(email)
	c.store.mu.Unlock()

	c.setSession(sess)
	c.listeners.Notify(backend.EventSignedIn, sess)
	user := sess.User
	return &user, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.store.mu.Lock()
	if err := c.store.SignOutErr; err != nil {
		c.store.mu.Unlock()
		return err
	}
	c.mu.Lock()
	if c.current != nil {
		delete(c.store.tokens, c.current.AccessToken)
	}
	c.mu.Unlock()
	c.store.mu.Unlock()

	c.setSession(nil)
	c.listeners.Notify(backend.EventSignedOut, nil)
	return nil
}

func (c *Client) setSession(s *backend.Session) {
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
}

func (c *Client) Select(ctx context.Context, table string, columns []string, filter backend.Filter, dest any) error {
	rows, err := c.match(table, columns, filter)
	if err != nil {
		return err
	}
	return decode(rows, dest)
}

func (c *Client) SelectSingle(ctx context.Context, table string, columns []string, filter backend.Filter, dest any) error {
	rows, err := c.match(table, columns, filter)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return backend.ErrNoRows(len(rows))
	}
	return decode(rows[0], dest)
}

func (c *Client) match(table string, columns []string, filter backend.Filter) ([]map[string]any, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.store.Selects++
	if c.store.SelectErr != nil {
		return nil, c.store.SelectErr
	}
	if table != models.InquiryTable {
		return nil, &backend.QueryError{Status: 404, Message: fmt.Sprintf("relation %q does not exist", table)}
	}

	var out []map[string]any
	for _, row := range c.store.rows {
		m, err := toMap(row)
		if err != nil {
			return nil, err
		}
		if !matches(m, filter) {
			continue
		}
		projected := make(map[string]any, len(columns))
		for _, col := range columns {
			projected[col] = m[col]
		}
		out = append(out, projected)
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, table string, fields map[string]any, filter backend.Filter) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if c.store.UpdateErr != nil {
		if err := c.store.UpdateErr(fields); err != nil {
			return err
		}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	c.store.Updates = append(c.store.Updates, UpdateCall{Table: table, Fields: copied, Filter: filter})

	for i := range c.store.rows {
		m, err := toMap(c.store.rows[i])
		if err != nil {
			return err
		}
		if matches(m, filter) {
			c.store.rows[i].Apply(fields)
		}
	}
	return nil
}

func toMap(row models.Inquiry) (map[string]any, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func matches(row map[string]any, filter backend.Filter) bool {
	for _, cond := range filter {
		if fmt.Sprint(row[cond.Column]) != fmt.Sprint(cond.Value) {
			return false
		}
	}
	return true
}

func decode(v any, dest any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
