package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminCookie is the session cookie carrying the shared admin secret.
const AdminCookie = "nadlan_admin"

// adminCookieMaxAge is 24 hours, the only session expiry there is.
const adminCookieMaxAge = 60 * 60 * 24

// RequireAdmin gates every admin route except login: the session cookie must
// hold the shared secret. Browser navigations are redirected to the login
// page; API calls get a 401.
func RequireAdmin(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(AdminCookie)
		if err == nil && cookie == password {
			c.Next()
			return
		}

		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			c.Redirect(http.StatusFound, "/admin")
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		}
		c.Abort()
	}
}
