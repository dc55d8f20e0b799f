package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/devtrails/campdir/internal/auth"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLoader
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

const SessionCookie = "token"

// Protect extracts the session token from the cookie or bearer header,
// verifies it, loads the user and attaches the identity to the context.
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)

		if raw == "" {
			abortUnauthorized(c, "Not authorized to access this route")
			return
		}

		claims, err := m.jwt.VerifyToken(raw)

		if err != nil {
			abortUnauthorized(c, "Not authorized to access this route")
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)

		if err != nil {
			abortUnauthorized(c, "Not authorized to access this route")
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), id)

		if err != nil {
			abortUnauthorized(c, "Not authorized to access this route")
			return
		}

		// Stash the resolved identity for downstream handlers
		c.Set(ctxUserKey, u)
		c.Set(ctxUserIDKey, u.ID.Hex())
		c.Set(ctxRoleKey, u.Role)

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")

	if strings.HasPrefix(authHeader, "Bearer ") {
		if raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer")); raw != "" {
			return raw
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" && cookie != "none" {
		return cookie
	}

	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
