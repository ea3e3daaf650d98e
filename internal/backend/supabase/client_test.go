package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/models"
)

// testHandler captures the incoming request and returns a canned response.
type testHandler struct {
	method string
	path   string
	query  string
	body   string
	header http.Header

	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.header = r.Header.Clone()
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

func newTestClient(t *testing.T, h http.Handler, stored *backend.Session) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "anon-key", stored)
}

func signedToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("project-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return tok
}

func TestSignInWithPassword_Success(t *testing.T) {
	h := &testHandler{responseBody: `{"access_token":"at","refresh_token":"rt","expires_in":3600,"expires_at":4102444800,"user":{"id":"u-1","email":"a@b.c"}}`}
	c := newTestClient(t, h, nil)

	var events []backend.Event
	c.OnSessionChange(func(ev backend.Event, s *backend.Session) { events = append(events, ev) })

	user, err := c.SignInWithPassword(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if user.ID != "u-1" || user.Email != "a@b.c" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if h.method != http.MethodPost || h.path != "/auth/v1/token" || h.query != "grant_type=password" {
		t.Fatalf("unexpected request: %s %s?%s", h.method, h.path, h.query)
	}
	if h.header.Get("apikey") != "anon-key" || h.header.Get("Authorization") != "Bearer anon-key" {
		t.Fatalf("unexpected auth headers: %v", h.header)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(h.body), &body); err != nil || body["email"] != "a@b.c" || body["password"] != "pw" {
		t.Fatalf("unexpected body %q", h.body)
	}
	if len(events) != 1 || events[0] != backend.EventSignedIn {
		t.Fatalf("expected SIGNED_IN, got %v", events)
	}
	if s := c.current(); s == nil || s.AccessToken != "at" || !s.ExpiresAt.Equal(time.Unix(4102444800, 0)) {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestSignInWithPassword_BadCredentials(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadRequest, responseBody: `{"error":"invalid_grant","error_description":"Invalid login credentials"}`}
	c := newTestClient(t, h, nil)

	_, err := c.SignInWithPassword(context.Background(), "a@b.c", "nope")
	var authErr *backend.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Message != "Invalid login credentials" {
		t.Fatalf("unexpected message %q", authErr.Message)
	}
	if c.current() != nil {
		t.Fatalf("session must stay empty")
	}
}

func TestToSession_FallsBackToClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c := New("http://example", "k", nil)
	s := c.toSession(tokenResponse{AccessToken: signedToken(t, "sub-1", "x@y.z", exp), RefreshToken: "rt"})
	if s.User.ID != "sub-1" || s.User.Email != "x@y.z" {
		t.Fatalf("unexpected user %+v", s.User)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, s.ExpiresAt)
	}
}

func TestFetchSession_NoSession(t *testing.T) {
	h := &testHandler{}
	c := newTestClient(t, h, nil)
	s, err := c.FetchSession(context.Background())
	if err != nil || s != nil {
		t.Fatalf("expected no session, got %v %v", s, err)
	}
	if h.method != "" {
		t.Fatalf("no request expected, got %s", h.method)
	}
}

func TestFetchSession_ValidSessionNoRequest(t *testing.T) {
	h := &testHandler{}
	stored := &backend.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(time.Hour)}
	c := newTestClient(t, h, stored)
	s, err := c.FetchSession(context.Background())
	if err != nil || s != stored {
		t.Fatalf("expected stored session, got %v %v", s, err)
	}
	if h.method != "" {
		t.Fatalf("no request expected, got %s", h.method)
	}
}

func TestFetchSession_RefreshesExpiredToken(t *testing.T) {
	h := &testHandler{responseBody: `{"access_token":"at2","refresh_token":"rt2","expires_in":3600,"user":{"id":"u-1","email":"a@b.c"}}`}
	stored := &backend.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(-time.Minute)}
	c := newTestClient(t, h, stored)

	var events []backend.Event
	c.OnSessionChange(func(ev backend.Event, s *backend.Session) { events = append(events, ev) })

	s, err := c.FetchSession(context.Background())
	if err != nil {
		t.Fatalf("FetchSession: %v", err)
	}
	if s == nil || s.AccessToken != "at2" || s.RefreshToken != "rt2" {
		t.Fatalf("unexpected session %+v", s)
	}
	if h.query != "grant_type=refresh_token" || !strings.Contains(h.body, `"refresh_token":"rt"`) {
		t.Fatalf("unexpected refresh request %s %s", h.query, h.body)
	}
	if len(events) != 1 || events[0] != backend.EventTokenRefreshed {
		t.Fatalf("expected TOKEN_REFRESHED, got %v", events)
	}
}

func TestFetchSession_RejectedRefreshSignsOut(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadRequest, responseBody: `{"msg":"Invalid Refresh Token"}`}
	stored := &backend.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(-time.Minute)}
	c := newTestClient(t, h, stored)

	var events []backend.Event
	c.OnSessionChange(func(ev backend.Event, s *backend.Session) { events = append(events, ev) })

	s, err := c.FetchSession(context.Background())
	if err != nil || s != nil {
		t.Fatalf("expected signed out, got %v %v", s, err)
	}
	if len(events) != 1 || events[0] != backend.EventSignedOut {
		t.Fatalf("expected SIGNED_OUT, got %v", events)
	}
}

func TestFetchSession_ServerErrorIsReturned(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadGateway, responseBody: `upstream down`}
	stored := &backend.Session{AccessToken: "at", RefreshToken: "rt", ExpiresAt: time.Now().Add(-time.Minute)}
	c := newTestClient(t, h, stored)

	if _, err := c.FetchSession(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if c.current() != stored {
		t.Fatalf("stored session must be kept on server errors")
	}
}

func TestSignOut(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	stored := &backend.Session{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}
	c := newTestClient(t, h, stored)

	var events []backend.Event
	c.OnSessionChange(func(ev backend.Event, s *backend.Session) { events = append(events, ev) })

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if h.path != "/auth/v1/logout" || h.header.Get("Authorization") != "Bearer at" {
		t.Fatalf("unexpected request %s %v", h.path, h.header)
	}
	if c.current() != nil || len(events) != 1 || events[0] != backend.EventSignedOut {
		t.Fatalf("expected signed out, events %v", events)
	}
}

func TestSignOut_Failure(t *testing.T) {
	h := &testHandler{statusCode: http.StatusInternalServerError, responseBody: `{"msg":"database unavailable"}`}
	stored := &backend.Session{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}
	c := newTestClient(t, h, stored)

	err := c.SignOut(context.Background())
	var authErr *backend.AuthError
	if !errors.As(err, &authErr) || authErr.Message != "database unavailable" {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if c.current() != stored {
		t.Fatalf("session must be kept when sign-out fails")
	}
}

func TestSelect(t *testing.T) {
	h := &testHandler{responseBody: `[{"id":1,"CustomerName":"Ann","Stage":"Sold","Date":"2024-05-01"},{"id":2,"CustomerName":"Bo","Stage":"Closed"}]`}
	stored := &backend.Session{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}
	c := newTestClient(t, h, stored)

	var rows []models.Inquiry
	if err := c.Select(context.Background(), models.InquiryTable, []string{"id", "CustomerName", "Stage", "Date"}, nil, &rows); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 || rows[0].CustomerName != "Ann" || rows[0].Date != "2024-05-01" || rows[1].ID != 2 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if h.method != http.MethodGet || h.path != "/rest/v1/WebsiteInquiries" {
		t.Fatalf("unexpected request %s %s", h.method, h.path)
	}
	if h.query != "select=id%2CCustomerName%2CStage%2CDate" {
		t.Fatalf("unexpected query %q", h.query)
	}
	if h.header.Get("Authorization") != "Bearer at" {
		t.Fatalf("expected user token, got %q", h.header.Get("Authorization"))
	}
}

func TestSelectSingle_NoRows(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusNotAcceptable,
		responseBody: `{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`,
	}
	c := newTestClient(t, h, nil)

	var row models.Inquiry
	err := c.SelectSingle(context.Background(), models.InquiryTable, models.DetailColumns, backend.Eq("id", 99), &row)
	var qe *backend.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	if qe.Code != "PGRST116" || qe.Message != "JSON object requested, multiple (or no) rows returned" || qe.Status != http.StatusNotAcceptable {
		t.Fatalf("unexpected error %+v", qe)
	}
	if h.header.Get("Accept") != "application/vnd.pgrst.object+json" {
		t.Fatalf("expected object accept header, got %q", h.header.Get("Accept"))
	}
	if !strings.Contains(h.query, "id=eq.99") {
		t.Fatalf("expected id filter, got %q", h.query)
	}
}

func TestUpdate(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c := newTestClient(t, h, nil)

	err := c.Update(context.Background(), models.InquiryTable, map[string]any{"Stage": "Sold"}, backend.Eq("id", 7))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if h.method != http.MethodPatch || h.query != "id=eq.7" || h.body != `{"Stage":"Sold"}` {
		t.Fatalf("unexpected request %s ?%s %s", h.method, h.query, h.body)
	}
	if h.header.Get("Prefer") != "return=minimal" || h.header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected headers %v", h.header)
	}
}

func TestUpdate_ConstraintViolation(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadRequest, responseBody: `{"code":"23514","message":"constraint violation"}`}
	c := newTestClient(t, h, nil)

	err := c.Update(context.Background(), models.InquiryTable, map[string]any{"Stage": "x"}, backend.Eq("id", 7))
	if err == nil || err.Error() != "constraint violation" {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestErrorMessage_Fallbacks(t *testing.T) {
	if got := errorMessage(500, []byte("plain text")); got != "plain text" {
		t.Fatalf("got %q", got)
	}
	if got := errorMessage(502, nil); got != "502 Bad Gateway" {
		t.Fatalf("got %q", got)
	}
	if got := errorMessage(400, []byte(`{"message":"m","error":"e"}`)); got != "m" {
		t.Fatalf("got %q", got)
	}
}
