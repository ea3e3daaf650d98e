// Package supabase implements backend.Client against a hosted Supabase
// project: GoTrue for auth and PostgREST for table access.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"inquiry-dashboard/internal/backend"
)

// expiryMargin refreshes access tokens slightly before they expire.
const expiryMargin = 30 * time.Second

type Client struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client

	now       func() time.Time
	listeners backend.Listeners

	mu      sync.Mutex
	session *backend.Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a client for the project at baseURL. stored is the session kept
// by the browser from a previous request, or nil.
func New(baseURL, key string, stored *backend.Session, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Key:        key,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		session:    stored,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFactory returns a backend.Factory sharing one http.Client between requests.
func NewFactory(baseURL, key string, timeout time.Duration) backend.Factory {
	hc := &http.Client{Timeout: timeout}
	return func(stored *backend.Session) backend.Client {
		return New(baseURL, key, stored, WithHTTPClient(hc))
	}
}

func (c *Client) OnSessionChange(fn func(backend.Event, *backend.Session)) backend.Subscription {
	return c.listeners.Subscribe(fn)
}

func (c *Client) current() *backend.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s *backend.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// bearer is the access token of the current session, or the project key for
// anonymous requests.
func (c *Client) bearer() string {
	if s := c.current(); s != nil && s.AccessToken != "" {
		return s.AccessToken
	}
	return c.Key
}

type apiResponse struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, header http.Header, body any) (*apiResponse, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.Key)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k := range header {
		req.Header.Set(k, header.Get(k))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &apiResponse{status: resp.StatusCode, body: data}, nil
}

// errorMessage extracts the human readable message from a GoTrue or PostgREST
// error body.
func errorMessage(status int, body []byte) string {
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"msg", "error_description", "message", "error"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
