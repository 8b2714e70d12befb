package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/internal/apperr"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/session"
)

// IdentityKey is the gin context key holding the caller's *auth.Identity.
const IdentityKey = "identity"

// IdentityResolver turns request credentials into an identity. *auth.Authenticator implements it.
type IdentityResolver interface {
	FromToken(ctx context.Context, token string) (*auth.Identity, error)
	FromSession(ctx context.Context, sessionID string) (*auth.Identity, error)
}

// resolve checks "Authorization: Bearer <token>" first, then the session cookie.
// A malformed or invalid bearer header fails outright instead of falling back.
func resolve(c *gin.Context, r IdentityResolver) (*auth.Identity, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2) // 0 is Bearer, 1 is token
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return nil, apperr.InvalidToken(nil)
		}
		return r.FromToken(c.Request.Context(), parts[1])
	}

	sid, err := c.Cookie(session.CookieName)
	if err != nil || sid == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return r.FromSession(c.Request.Context(), sid)
}

func setIdentity(c *gin.Context, id *auth.Identity) {
	c.Set(IdentityKey, id)
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
}

// IdentityFrom returns the identity stored by Authenticate or OptionalIdentity, or nil.
func IdentityFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

// AbortWithError writes the structured error body and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	e := apperr.From(err)
	c.AbortWithStatusJSON(e.Code.HTTPStatus(), gin.H{"error": e})
}

// Authenticate is the API guard: requests without a valid identity get 401 JSON.
func Authenticate(r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolve(c, r)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// OptionalIdentity attaches the identity when one resolves and never aborts.
func OptionalIdentity(r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := resolve(c, r); err == nil {
			setIdentity(c, id)
		}
		c.Next()
	}
}

// RequireRole checks if the user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireRole(IdentityFrom(c), requiredRole); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// IsAuthenticated is the page guard: anonymous visitors are redirected to /login.
func IsAuthenticated(r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(session.CookieName)
		id, err := r.FromSession(c.Request.Context(), sid)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// IsAdmin is the page counterpart of RequireAdmin and answers in plain text.
func IsAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).IsAdmin() {
			c.String(http.StatusForbidden, "Access denied. Administrator rights required.")
			c.Abort()
			return
		}
		c.Next()
	}
}
