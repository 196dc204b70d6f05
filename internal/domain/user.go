package domain

import (
	"time"
)

// UserStatus is the lifecycle state of a user account
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// Valid reports whether s is a known status
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// User represents a registered student
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Program      string
	YearLevel    string
	Status       UserStatus
	CreatedAt    time.Time
}

// IsActive reports whether the user may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// DisplayName is the name shown in the dashboard header
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Session is a persisted session token issued at login
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IdentitySource records which credential resolved an identity
type IdentitySource string

const (
	SourceInteractive IdentitySource = "interactive"
	SourceToken       IdentitySource = "token"
)

// Identity is the acting user resolved for a single request
type Identity struct {
	UserID      int64
	Username    string
	DisplayName string
	Source      IdentitySource
	// SessionID is the interactive session id or the bearer token
	SessionID string
}
