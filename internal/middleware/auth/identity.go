package auth

import (
	"context"
	"strings"

	"bookhub/internal/apperr"
	"bookhub/internal/microservices/http-api/models"
)

// Identity is the caller resolved from a session or a bearer token.
type Identity struct {
	UserID string `json:"id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
}

func (id *Identity) IsAdmin() bool {
	return id != nil && strings.EqualFold(id.Role, models.RoleAdmin)
}

// RequireRole fails with Unauthenticated for a nil identity and Forbidden
// when the role does not match (case-insensitive).
func RequireRole(id *Identity, role string) error {
	if id == nil {
		return apperr.ErrUnauthenticated
	}
	if !strings.EqualFold(id.Role, role) {
		if strings.EqualFold(role, models.RoleAdmin) {
			return apperr.Forbidden("administrator rights required")
		}
		return apperr.Forbidden(role + " role required")
	}
	return nil
}

func RequireAdmin(id *Identity) error {
	return RequireRole(id, models.RoleAdmin)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity attached by the auth middleware, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
