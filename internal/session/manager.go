package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

const (
	// CookieName is the name of the interactive session cookie
	CookieName = "classtrack_session"

	DefaultTTL = 24 * time.Hour
)

// ManagerConfig configures a Manager
type ManagerConfig struct {
	// Secret signs cookie values; an empty secret leaves them unsigned
	Secret string
	TTL    time.Duration
	// Secure marks the cookie HTTPS-only
	Secure bool
}

// Manager binds interactive sessions to HTTP cookies
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a session manager over store
func NewManager(store Store, cfg ManagerConfig) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		secure: cfg.Secure,
		now:    time.Now,
	}
}

// Store returns the underlying session store
func (m *Manager) Store() Store {
	return m.store
}

// Load resolves the session referenced by the request cookie. It returns
// ErrNotFound when there is no cookie or the session is unknown or expired.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	id, ok := m.cookieID(r)
	if !ok {
		return nil, ErrNotFound
	}
	return m.store.Get(r.Context(), id)
}

// Establish starts a new session for identity, replacing any session the
// request already carries, and sets the cookie.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, identity *domain.Identity) (*Session, error) {
	ctx := r.Context()
	if id, ok := m.cookieID(r); ok {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("drop previous session: %w", err)
		}
	}

	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := m.now()
	s := &Session{
		ID:          id,
		UserID:      identity.UserID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}

	http.SetCookie(w, m.cookie(m.sign(id), s.ExpiresAt, int(m.ttl.Seconds())))
	return s, nil
}

// Destroy removes the request's session, if any, and expires the cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))

	id, ok := m.cookieID(r)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return m.verify(c.Value)
}

func (m *Manager) sign(id string) string {
	if len(m.secret) == 0 {
		return id
	}
	return id + "." + m.mac(id)
}

func (m *Manager) verify(value string) (string, bool) {
	if len(m.secret) == 0 {
		return value, true
	}
	id, sig, ok := strings.Cut(value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(m.mac(id))) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
