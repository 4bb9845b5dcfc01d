// Package session keeps server-side login sessions referenced by a signed
// cookie. The cookie carries only the session id; the account identity
// lives in the Store.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id has no live session.
var ErrNotFound = errors.New("session not found")

// Session associates a client with an authenticated account.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions by id.
type Store interface {
	// Save stores the session. A zero ttl means no server-side expiry.
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, error)
	// Delete removes the session. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil for anonymous clients.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
