package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter считает попытки входа по ключу в фиксированном окне.
// Истёкшие окна вычищаются при обращениях, фоновой горутины нет.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*attemptWindow
	nextSweep time.Time
}

type attemptWindow struct {
	attempts int
	endsAt   time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithNow(limit, window, time.Now)
}

func NewRateLimiterWithNow(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		windows: make(map[string]*attemptWindow),
	}
}

// Allow записывает попытку для key и сообщает, укладывается ли она в лимит.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.endsAt) {
		rl.windows[key] = &attemptWindow{attempts: 1, endsAt: now.Add(rl.window)}
		return true
	}
	if w.attempts >= rl.limit {
		return false
	}
	w.attempts++
	return true
}

// sweep не чаще раза в окно удаляет закончившиеся окна.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	for key, w := range rl.windows {
		if !now.Before(w.endsAt) {
			delete(rl.windows, key)
		}
	}
	rl.nextSweep = now.Add(rl.window)
}

// Tracked — число ключей с открытым окном.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// RateLimit ограничивает запросы по IP клиента. IP берётся с учётом
// доверенных прокси движка (gin.Engine.SetTrustedProxies).
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.String(http.StatusTooManyRequests, "Too many sign-in attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
