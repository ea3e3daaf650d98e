package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"inquiry-dashboard/internal/backend"
	"inquiry-dashboard/internal/dashboard"
	"inquiry-dashboard/internal/handlers"
	"inquiry-dashboard/internal/middleware"
	"inquiry-dashboard/internal/models"
	"inquiry-dashboard/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionCookie = "inquiry_session"

type Deps struct {
	Factory       backend.Factory
	Roster        models.Roster
	SessionSecret string
	// TrustedProxies — адреса прокси, которым верим в X-Forwarded-For;
	// пусто: IP клиента берётся из соединения
	TrustedProxies []string

	// Guard, Drafts и SignInLimiter создаются по умолчанию, если не заданы
	Guard         *dashboard.SaveGuard
	Drafts        *dashboard.DraftStore
	SignInLimiter *middleware.RateLimiter
}

func templates() *template.Template {
	funcs := template.FuncMap{
		"eq": func(a, b interface{}) bool { return a == b },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(web.FS, "templates/*.html"))
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// от этого IP считается лимит попыток входа
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(static))
	r.SetHTMLTemplate(templates())

	store := cookie.NewStore([]byte(deps.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionCookie, store))

	limiter := deps.SignInLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(10, time.Minute)
	}
	h := handlers.New(deps.Roster, deps.Guard, deps.Drafts)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	app := r.Group("/")
	app.Use(middleware.InjectSession(deps.Factory))

	// ВХОД
	guest := app.Group("/")
	guest.Use(middleware.RequireGuest())
	guest.GET("/", h.ShowSignIn)
	guest.POST("/", middleware.RateLimit(limiter), h.SignIn)

	// ЗАЯВКИ
	auth := app.Group("/")
	auth.Use(middleware.RequireAuth())
	auth.GET("/data", h.ListInquiries)
	auth.POST("/data/:id/edit", h.ToggleEditInquiry)
	auth.POST("/data/:id/save", h.SaveInquiryRow)
	auth.POST("/data/:id/cancel", h.CancelInquiryEdit)
	auth.POST("/logout", h.SignOut)

	detail := app.Group("/details")
	detail.Use(middleware.Guard(middleware.ViewDetail))
	detail.GET("/:id", h.ShowInquiry)
	detail.GET("/:id/edit", h.EditInquiry)
	detail.POST("/:id", h.UpdateInquiry)

	return r, nil
}
