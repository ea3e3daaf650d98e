package database

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invalidCredentials = "Invalid login credentials"

// Client реализует backend.Client поверх собственной БД: сотрудники и заявки
// лежат в Postgres, сессия — подписанный JWT.
type Client struct {
	db     *gorm.DB
	tokens TokenConfig
	now    func() time.Time

	listeners backend.Listeners

	mu      sync.Mutex
	session *backend.Session
}

func NewClient(db *gorm.DB, tokens TokenConfig, stored *backend.Session) *Client {
	return &Client{db: db, tokens: tokens, now: time.Now, session: stored}
}

func NewFactory(db *gorm.DB, tokens TokenConfig) backend.Factory {
	return func(stored *backend.Session) backend.Client {
		return NewClient(db, tokens, stored)
	}
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

func (c *Client) OnSessionChange(fn func(backend.Event, *backend.Session)) backend.Subscription {
	return c.listeners.Subscribe(fn)
}

// FetchSession проверяет подпись и срок токена; невалидный токен завершает сессию.
func (c *Client) FetchSession(ctx context.Context) (*backend.Session, error) {
	cur := c.current()
	if cur == nil {
		return nil, nil
	}

	claims, err := VerifyToken(cur.AccessToken, c.tokens, c.now())
	if err != nil {
		c.setSession(nil)
		c.listeners.Notify(backend.EventSignedOut, nil)
		return nil, nil
	}

	sess := &backend.Session{
		AccessToken: cur.AccessToken,
		User:        backend.User{ID: claims.Subject, Email: claims.Email},
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	c.setSession(sess)
	return sess, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.StaffUser
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &backend.AuthError{Status: 400, Message: invalidCredentials}
		}
		return nil, &backend.AuthError{Status: 500, Message: err.Error()}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &backend.AuthError{Status: 400, Message: invalidCredentials}
	}

	token, expiresAt, err := CreateToken(user.UID, user.Email, c.tokens, c.now())
	if err != nil {
		return nil, &backend.AuthError{Status: 500, Message: err.Error()}
	}

	sess := &backend.Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        backend.User{ID: user.UID, Email: user.Email},
	}
	c.setSession(sess)
	c.listeners.Notify(backend.EventSignedIn, sess)

	u := sess.User
	return &u, nil
}

// SignOut: токены не хранятся на сервере, достаточно забыть сессию.
func (c *Client) SignOut(ctx context.Context) error {
	c.setSession(nil)
	c.listeners.Notify(backend.EventSignedOut, nil)
	return nil
}

func applyFilter(q *gorm.DB, filter backend.Filter) *gorm.DB {
	for _, cond := range filter {
		q = q.Where(clause.Eq{Column: clause.Column{Name: cond.Column}, Value: cond.Value})
	}
	return q
}

func (c *Client) query(ctx context.Context, table string, columns []string, filter backend.Filter) *gorm.DB {
	q := c.db.WithContext(ctx).Table(table)
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	return applyFilter(q, filter)
}

func (c *Client) Select(ctx context.Context, table string, columns []string, filter backend.Filter, dest any) error {
	if err := c.query(ctx, table, columns, filter).Find(dest).Error; err != nil {
		return &backend.QueryError{Message: err.Error()}
	}
	return nil
}

// SelectSingle читает не больше двух строк, чтобы отличить "одна" от "несколько".
func (c *Client) SelectSingle(ctx context.Context, table string, columns []string, filter backend.Filter, dest any) error {
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return &backend.QueryError{Message: "destination must be a non-nil pointer"}
	}

	rows := reflect.New(reflect.SliceOf(target.Elem().Type()))
	if err := c.query(ctx, table, columns, filter).Limit(2).Find(rows.Interface()).Error; err != nil {
		return &backend.QueryError{Message: err.Error()}
	}
	if n := rows.Elem().Len(); n != 1 {
		return backend.ErrNoRows(n)
	}
	target.Elem().Set(rows.Elem().Index(0))
	return nil
}

// Update меняет строки и пишет запись аудита в одной транзакции.
func (c *Client) Update(ctx context.Context, table string, fields map[string]any, filter backend.Filter) error {
	if len(filter) == 0 {
		return &backend.QueryError{Message: "UPDATE requires a WHERE clause"}
	}

	var user backend.User
	if s := c.current(); s != nil {
		user = s.User
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyFilter(tx.Table(table), filter).Updates(fields).Error; err != nil {
			return err
		}
		return CreateAuditLog(tx, user, table, filterID(filter), "update", describeFields(fields))
	})
	if err != nil {
		return &backend.QueryError{Message: err.Error()}
	}
	return nil
}
