package auth

import (
	"context"
	"errors"

	"bookhub/internal/apperr"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/session"
)

// UserFinder is the slice of the user repository the authenticator needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator resolves a session id or a bearer token into an Identity.
type Authenticator struct {
	tokens   *TokenManager
	users    UserFinder
	sessions session.Store
}

func NewAuthenticator(tokens *TokenManager, users UserFinder, sessions session.Store) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, sessions: sessions}
}

// FromToken verifies the token and loads the user it names. A valid token for
// a user that no longer exists is Unauthenticated.
func (a *Authenticator) FromToken(ctx context.Context, token string) (*Identity, error) {
	userID, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: user.ID, Login: user.Login, Role: user.Role}, nil
}

// FromSession loads the server-side session record.
func (a *Authenticator) FromSession(ctx context.Context, sessionID string) (*Identity, error) {
	if sessionID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	rec, err := a.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNoSession) {
		return nil, apperr.Unauthenticated("session expired or missing")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Identity{UserID: rec.UserID, Login: rec.Login, Role: rec.Role}, nil
}
