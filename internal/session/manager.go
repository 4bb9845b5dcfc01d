package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultCookieName = "blogdb.sid"

// Options configures a Manager.
type Options struct {
	CookieName string
	Secret     string
	// TTL of zero issues a browser-session cookie with no server-side expiry.
	TTL    time.Duration
	Secure bool
}

// Manager issues, resolves and destroys cookie-referenced sessions.
type Manager struct {
	store      Store
	logger     *logrus.Logger
	cookieName string
	secret     []byte
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(store Store, logger *logrus.Logger, opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("session secret is required")
	}
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		store:      store,
		logger:     logger,
		cookieName: name,
		secret:     []byte(opts.Secret),
		ttl:        opts.TTL,
		secure:     opts.Secure,
		now:        time.Now,
	}, nil
}

// Issue creates a session for the account and sets the cookie on w.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, userID int, name string) (Session, error) {
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: m.now(),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return Session{}, err
	}

	token, err := m.sign(s.ID)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return Session{}, err
	}

	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.ttl > 0 {
		cookie.Expires = s.CreatedAt.Add(m.ttl)
		cookie.MaxAge = int(m.ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return s, nil
}

// Destroy removes the request's session, if any, and clears the cookie.
// It never fails for a missing or invalid session.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	id, ok := m.sessionID(r)
	if !ok {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// Resolve returns the live session referenced by the request cookie.
func (m *Manager) Resolve(r *http.Request) (*Session, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, ErrNotFound
	}
	s, err := m.store.Load(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Middleware attaches the request's session to its context.
// Requests without a valid session proceed anonymously.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Resolve(r)
		if err != nil {
			if !errors.Is(err, ErrNotFound) && m.logger != nil {
				m.logger.WithError(err).Warn("session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return "", false
	}
	id, err := m.verify(c.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

func (m *Manager) sign(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(m.now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) verify(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", errors.New("invalid session id")
	}
	return claims.ID, nil
}
