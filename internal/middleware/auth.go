package middleware

import (
	"net/http"

	"skillforge/internal/auth"
	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the bearer session token.
const SessionCookie = "sessionToken"

const userKey = "currentUser"

// SessionMiddleware resolves the session cookie into an account and
// stores it in the gin context. Requests without a resolvable session
// get 401. The cookie is the only place the token is read; everything
// downstream works with the resolved account.
func SessionMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)

		user, err := svc.ResolveSession(c.Request.Context(), token)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			c.Abort()
			return
		}
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "unauthorized")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireRoles allows only accounts whose role is in the given set.
// Must run after SessionMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "unauthorized")
			c.Abort()
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts to admins.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// RequireMentor restricts to mentors and admins.
func RequireMentor() gin.HandlerFunc {
	return RequireRoles(models.RoleMentor, models.RoleAdmin)
}

// CurrentUser returns the account resolved by SessionMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.SafeUser {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.SafeUser)
	if !ok {
		return nil
	}
	return user
}
