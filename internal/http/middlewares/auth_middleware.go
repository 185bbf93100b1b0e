package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

const (
	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
	ctxRoleKey   = "auth.role"
)

// RequireAuth guards API endpoints: it answers 401 JSON instead of the
// redirect the page-level gate produces. A token whose claims are missing
// id or role counts as unauthenticated even when the signature checks out.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionTokenFrom(c)

		if raw == "" {
			abortUnauthorized(c, "Missing session token")
			return
		}

		claims, err := m.jwt.VerifySessionToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session token")
			return
		}

		if claims.UserID == "" || claims.Role == "" {
			abortUnauthorized(c, "Session is not authenticated")
			return
		}

		setIdentityContext(c, claims)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "unauthorized",
		"message": message,
	})
}

func setIdentityContext(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxUserIDKey, claims.UserID)
	c.Set(ctxEmailKey, claims.Email)
	c.Set(ctxRoleKey, claims.Role)
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
