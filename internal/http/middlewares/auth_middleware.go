package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/galleryhub/galleryhub/internal/auth"
	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Small interfaces so tests can fake the collaborators easily.

type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// DemoResolver resolves the reserved demo subject without a store lookup.
type DemoResolver interface {
	Resolve(subjectID string) (user.User, bool)
}

// AuthMiddleware is the auth gate: extract bearer token, verify, resolve the
// acting identity (demo sentinel or store), attach it to the context.
// The sole header contract is "Authorization: Bearer <token>".
type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
	demo  DemoResolver
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup, demo DemoResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, demo: demo}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)

		if raw == "" {
			abortUnauthorized(c, "no_token", "Missing or invalid Authorization header")
			return
		}

		identity, code, message := m.resolve(c.Request.Context(), raw)

		if code != "" {
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(CtxIdentity, identity)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a usable token is present and
// proceeds anonymously otherwise. Public reads use it to decide whether a
// caller may see unpublished content.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)

		if raw != "" {
			if identity, code, _ := m.resolve(c.Request.Context(), raw); code == "" {
				c.Set(CtxIdentity, identity)
			}
		}

		c.Next()
	}
}

// resolve walks token -> claims -> identity. An empty code means success.
func (m *AuthMiddleware) resolve(ctx context.Context, raw string) (user.User, string, string) {
	claims, err := m.jwt.VerifyToken(raw)

	if err != nil {
		return user.User{}, "invalid_token", "Invalid or expired token"
	}

	if m.demo != nil {
		if identity, ok := m.demo.Resolve(claims.UserID); ok {
			return identity, "", ""
		}
	}

	if m.users == nil {
		return user.User{}, "invalid_token", "Unknown identity"
	}

	identity, err := m.users.GetByID(ctx, claims.UserID)

	if err != nil {
		return user.User{}, "invalid_token", "Unknown identity"
	}

	if err := identity.CheckActive(); err != nil {
		return user.User{}, "inactive_user", "Account is deactivated"
	}

	return identity, "", ""
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// IdentityFromContext returns the resolved identity, if any.
func IdentityFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxIdentity)

	if !ok {
		return user.User{}, false
	}

	identity, ok := v.(user.User)

	return identity, ok
}
