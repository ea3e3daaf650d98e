// Package backend describes the remote data/auth service the dashboard talks to.
package backend

import (
	"context"
	"fmt"
	"time"
)

// Event is the kind of session change reported to subscribers.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the authenticated context obtained from the auth service.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Expired reports whether the access token is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Cond is a single equality condition.
type Cond struct {
	Column string
	Value  any
}

// Filter is a conjunction of equality conditions. A nil filter matches every row.
type Filter []Cond

// Eq builds a filter with one equality condition.
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// Subscription is returned by OnSessionChange.
type Subscription interface {
	Unsubscribe()
}

// Client is the contract of the remote data/auth service. Implementations are
// stateful: they hold the current session and report its changes to listeners.
type Client interface {
	FetchSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(Event, *Session)) Subscription
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error

	// Select decodes matching rows into dest, a pointer to a slice.
	Select(ctx context.Context, table string, columns []string, filter Filter, dest any) error
	// SelectSingle decodes exactly one row into dest; zero or several rows are a QueryError.
	SelectSingle(ctx context.Context, table string, columns []string, filter Filter, dest any) error
	Update(ctx context.Context, table string, fields map[string]any, filter Filter) error
}

// Factory builds a client seeded with a previously stored session (nil if none).
type Factory func(stored *Session) Client

// AuthError is returned for bad credentials and failed sign-out.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// QueryError is returned when the data service rejects a query.
type QueryError struct {
	Status  int
	Code    string
	Message string
}

func (e *QueryError) Error() string { return e.Message }

func queryErrorf(format string, args ...any) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...)}
}

// ErrNoRows mirrors the message the hosted data service uses for single-row lookups.
func ErrNoRows(n int) *QueryError {
	if n == 0 {
		return &QueryError{Code: "PGRST116", Message: "JSON object requested, multiple (or no) rows returned"}
	}
	return queryErrorf("JSON object requested, multiple (or no) rows returned (got %d)", n)
}
