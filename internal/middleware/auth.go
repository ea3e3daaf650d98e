package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// View is a page the guard decides about.
type View int

const (
	ViewSignIn View = iota
	ViewDashboard
	ViewDetail
)

// Resolve returns the view that is actually reachable: the sign-in view only
// when signed out, everything else only when signed in.
func Resolve(signedIn bool, requested View) View {
	if requested == ViewSignIn {
		if signedIn {
			return ViewDashboard
		}
		return ViewSignIn
	}
	if !signedIn {
		return ViewSignIn
	}
	return requested
}

func (v View) Path() string {
	if v == ViewSignIn {
		return "/"
	}
	return "/data"
}

func signedIn(c *gin.Context) bool {
	mgr := SessionManager(c)
	return mgr != nil && mgr.SignedIn()
}

// Guard redirects away from view when it is not reachable.
func Guard(view View) gin.HandlerFunc {
	return func(c *gin.Context) {
		if target := Resolve(signedIn(c), view); target != view {
			c.Redirect(http.StatusFound, target.Path())
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc { return Guard(ViewDashboard) }

func RequireGuest() gin.HandlerFunc { return Guard(ViewSignIn) }
