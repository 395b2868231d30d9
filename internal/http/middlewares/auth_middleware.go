package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/actorctx"
	"github.com/ricmelo/menuhub/internal/session"
)

// SessionCookieName is shared with the auth handlers that set and clear it.
const SessionCookieName = "menuhub_session"

// Keep this small interface so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (string, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession resolves the presented session token and stashes the
// identity on the context. Every protected route runs through here; a
// missing, unknown or expired token gets the same response.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := TokenFromRequest(c)

		if raw == "" {
			abortUnauthenticated(c)
			return
		}

		userID, err := m.sessions.Resolve(c.Request.Context(), raw)

		if err != nil {
			if errors.Is(err, session.ErrUnauthenticated) {
				abortUnauthenticated(c)
				return
			}

			// store failure: do not pretend the token is bad
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve session",
				},
			})
			return
		}

		StashIdentity(c, userID, raw)

		c.Next()
	}
}

// TokenFromRequest prefers the Authorization header, falling back to the
// session cookie the browser flow uses.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")

	if strings.HasPrefix(authHeader, "Bearer ") {
		if raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer")); raw != "" {
			return raw
		}
	}

	if raw, err := c.Cookie(SessionCookieName); err == nil {
		return raw
	}

	return ""
}

// StashIdentity records the resolved identity on both the gin context and
// the request context. Tests use it to stand in for RequireSession.
func StashIdentity(c *gin.Context, userID, rawToken string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxSessionTokenKey, rawToken)

	c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), userID))
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

func SessionTokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxSessionTokenKey)
	if !ok {
		return "", false
	}
	raw, ok := v.(string)
	return raw, ok
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthenticated",
			"message": "Log in to continue",
		},
	})
}
