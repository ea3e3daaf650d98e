package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inquiry-dashboard/internal/backend"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// toSession fills gaps in the token response from the access token claims.
// The signature is not checked: the token came straight from the auth server.
func (c *Client) toSession(tr tokenResponse) *backend.Session {
	s := &backend.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		User:         backend.User{ID: tr.User.ID, Email: tr.User.Email},
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, &claims); err == nil {
		if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
		if s.User.ID == "" {
			s.User.ID = claims.Subject
		}
		if s.User.Email == "" {
			s.User.Email = claims.Email
		}
	}
	return s
}

func (c *Client) grant(ctx context.Context, grantType string, body any) (*backend.Session, error) {
	q := url.Values{}
	q.Set("grant_type", grantType)
	// токен сессии здесь не нужен, достаточно ключа проекта
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.Key)
	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, header, body)
	if err != nil {
		return nil, err
	}
	if resp.status/100 != 2 {
		return nil, &backend.AuthError{Status: resp.status, Message: errorMessage(resp.status, resp.body)}
	}
	var tr tokenResponse
	if err := decodeJSON(resp.body, &tr); err != nil {
		return nil, err
	}
	return c.toSession(tr), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.User, error) {
	sess, err := c.grant(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	c.listeners.Notify(backend.EventSignedIn, sess)
	user := sess.User
	return &user, nil
}

// FetchSession returns the stored session, refreshing it when the access
// token is about to expire. A rejected refresh token ends the session.
func (c *Client) FetchSession(ctx context.Context) (*backend.Session, error) {
	cur := c.current()
	if cur == nil {
		return nil, nil
	}
	if cur.ExpiresAt.IsZero() || c.now().Add(expiryMargin).Before(cur.ExpiresAt) {
		return cur, nil
	}
	if cur.RefreshToken == "" {
		c.setSession(nil)
		c.listeners.Notify(backend.EventSignedOut, nil)
		return nil, nil
	}

	refreshed, err := c.grant(ctx, "refresh_token", map[string]string{"refresh_token": cur.RefreshToken})
	if err != nil {
		var authErr *backend.AuthError
		if errors.As(err, &authErr) && authErr.Status < 500 {
			c.setSession(nil)
			c.listeners.Notify(backend.EventSignedOut, nil)
			return nil, nil
		}
		return nil, err
	}
	c.setSession(refreshed)
	c.listeners.Notify(backend.EventTokenRefreshed, refreshed)
	return refreshed, nil
}

// SignOut revokes the session on the server and forgets it locally. A session
// the server no longer knows is treated as already signed out.
func (c *Client) SignOut(ctx context.Context) error {
	if c.current() != nil {
		resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil)
		if err != nil {
			return &backend.AuthError{Message: err.Error()}
		}
		switch {
		case resp.status/100 == 2:
		case resp.status == http.StatusUnauthorized, resp.status == http.StatusForbidden, resp.status == http.StatusNotFound:
		default:
			return &backend.AuthError{Status: resp.status, Message: errorMessage(resp.status, resp.body)}
		}
	}
	c.setSession(nil)
	c.listeners.Notify(backend.EventSignedOut, nil)
	return nil
}
