package handlers

import (
	"log"
	"net/http"
	"strings"

	"inquiry-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ShowSignIn(c *gin.Context) {
	render(c, http.StatusOK, "signin.html", gin.H{"error": "", "email": ""})
}

type signInForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (h *Handler) SignIn(c *gin.Context) {
	var form signInForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "signin.html", gin.H{"error": "Invalid form data"})
		return
	}
	form.Email = strings.TrimSpace(form.Email)

	mgr := middleware.SessionManager(c)
	// сессию в cookie записывает подписка менеджера на SIGNED_IN
	if _, err := mgr.Client().SignInWithPassword(c.Request.Context(), form.Email, form.Password); err != nil {
		render(c, http.StatusUnauthorized, "signin.html", gin.H{
			"error": err.Error(),
			"email": form.Email,
		})
		return
	}

	c.Redirect(http.StatusFound, "/data")
}

func (h *Handler) SignOut(c *gin.Context) {
	mgr := middleware.SessionManager(c)
	if err := mgr.Client().SignOut(c.Request.Context()); err != nil {
		log.Printf("sign-out failed: %v", err)
		renderError(c, http.StatusInternalServerError, "Logout failed: "+err.Error())
		return
	}
	c.Redirect(http.StatusFound, "/")
}
