// Package session manages interactive (cookie-addressed) login sessions.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

var (
	ErrNotFound = errors.New("session not found")
)

// Session is the server-side state of an interactive login
type Session struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity returns the request identity carried by the session
func (s *Session) Identity() *domain.Identity {
	return &domain.Identity{
		UserID:      s.UserID,
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Source:      domain.SourceInteractive,
		SessionID:   s.ID,
	}
}

// Store persists interactive sessions
type Store interface {
	Save(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for unknown or expired sessions
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// NewID returns a random 32-byte session identifier
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
