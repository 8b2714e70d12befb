// Package session keeps server-side login sessions referenced by a cookie.
package session

import (
	"context"
	"errors"
)

// CookieName is the cookie carrying the session id.
const CookieName = "bookhub.sid"

// ErrNoSession is returned when the id does not reference a live session.
var ErrNoSession = errors.New("session not found")

// Record is the identity stored for a logged-in browser.
type Record struct {
	UserID string `json:"id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
}

type Store interface {
	// Create persists rec and returns the new session id.
	Create(ctx context.Context, rec Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}
