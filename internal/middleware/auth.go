package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/services"
	"github.com/jastrate/task-manager/pkg/response"
)

const (
	// TokenCookie carries the access token for browser clients.
	TokenCookie = "jwt"

	currentUserKey = "current_user"
)

// ProtectRoute resolves the bearer token, or the jwt cookie when no
// Authorization header is sent, to an active user and stores it on the
// request context.
func ProtectRoute(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Set("user_id", user.ID.String())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the user stored by ProtectRoute, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// SetCurrentUser stores user as the authenticated user. Used by tests and
// by handlers that sign a user in.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
	c.Set("user_id", user.ID.String())
}

// AdminOnly allows global admins through. It must run after ProtectRoute.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Abort(c, response.NewUnauthorized("Not authorized. Try login again."))
			return
		}
		if !user.IsGlobalAdmin() {
			response.Abort(c, response.NewForbidden("Not authorized as admin. Try login as admin."))
			return
		}
		c.Next()
	}
}
