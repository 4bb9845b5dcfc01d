package services

import (
	"errors"

	"github.com/blogdb/server/internal/session"
)

var (
	// ErrInvalidCredentials covers both unknown names and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateName is returned when signup reuses an existing name.
	ErrDuplicateName = errors.New("name already taken")
	// ErrUnauthenticated is returned for mutations attempted without a session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when ownership enforcement rejects a mutation.
	ErrForbidden = errors.New("forbidden")
)

// RequireSession reports ErrUnauthenticated when no session is present.
func RequireSession(sess *session.Session) error {
	if sess == nil || sess.UserID < 1 {
		return ErrUnauthenticated
	}
	return nil
}
