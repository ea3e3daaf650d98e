package middleware

import (
	"log"
	"time"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	managerKey     = "SessionManager"
	currentUserKey = "CurrentUser"

	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresAt    = "expires_at"
	keyUserID       = "user_id"
	keyUserEmail    = "user_email"

	// ListStateKey: ключ черновиков таблицы в серверном хранилище.
	ListStateKey = "list_state"
)

// LoadStored восстанавливает сессию сервиса из cookie.
func LoadStored(sess sessions.Session) *backend.Session {
	access, _ := sess.Get(keyAccessToken).(string)
	if access == "" {
		return nil
	}
	s := &backend.Session{AccessToken: access}
	s.RefreshToken, _ = sess.Get(keyRefreshToken).(string)
	s.User.ID, _ = sess.Get(keyUserID).(string)
	s.User.Email, _ = sess.Get(keyUserEmail).(string)
	if exp, ok := sess.Get(keyExpiresAt).(int64); ok && exp > 0 {
		s.ExpiresAt = time.Unix(exp, 0)
	}
	return s
}

// StoreSession сохраняет сессию в cookie; nil очищает её вместе с черновиками.
func StoreSession(sess sessions.Session, s *backend.Session) {
	if s == nil {
		for _, k := range []string{keyAccessToken, keyRefreshToken, keyExpiresAt, keyUserID, keyUserEmail, ListStateKey} {
			sess.Delete(k)
		}
	} else {
		sess.Set(keyAccessToken, s.AccessToken)
		sess.Set(keyRefreshToken, s.RefreshToken)
		sess.Set(keyUserID, s.User.ID)
		sess.Set(keyUserEmail, s.User.Email)
		if s.ExpiresAt.IsZero() {
			sess.Delete(keyExpiresAt)
		} else {
			sess.Set(keyExpiresAt, s.ExpiresAt.Unix())
		}
	}
	if err := sess.Save(); err != nil {
		log.Printf("failed to save session cookie: %v", err)
	}
}

// InjectSession поднимает Session Manager на время запроса и кладёт его
// (и текущего пользователя) в контекст gin.
func InjectSession(newClient backend.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		mgr := session.NewManager(
			newClient(LoadStored(sess)),
			session.WithPersist(func(s *backend.Session) { StoreSession(sess, s) }),
		)
		mgr.Start(c.Request.Context())
		defer mgr.Close()

		c.Set(managerKey, mgr)
		if u := mgr.User(); u != nil {
			c.Set(currentUserKey, *u)
		}

		c.Next()
	}
}

func SessionManager(c *gin.Context) *session.Manager {
	v, ok := c.Get(managerKey)
	if !ok {
		return nil
	}
	mgr, _ := v.(*session.Manager)
	return mgr
}

func CurrentUser(c *gin.Context) (backend.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return backend.User{}, false
	}
	u, ok := v.(backend.User)
	return u, ok
}
