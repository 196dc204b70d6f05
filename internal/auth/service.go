package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

const (
	// DefaultTokenTTL is the lifetime of a session token issued at login
	DefaultTokenTTL = 30 * 24 * time.Hour

	// MinPasswordLength is the minimum number of characters in a password
	MinPasswordLength = 6

	tokenBytes = 32
)

// Repository defines the interface for auth data access
type Repository interface {
	// RegisterUser inserts the user and the welcome notification atomically,
	// setting user.ID
	RegisterUser(ctx context.Context, user *domain.User, welcome *domain.Notification) error
	UserExists(ctx context.Context, username, email string) (bool, error)
	// GetActiveUserByLogin matches login against username or email of an active user
	GetActiveUserByLogin(ctx context.Context, login string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)

	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByToken(ctx context.Context, token string) (*domain.Session, error)
	ListUserSessions(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// EventPublisher receives auth events
type EventPublisher interface {
	Publish(event domain.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.Event) {}

// Service handles authentication operations
type Service struct {
	repo     Repository
	hasher   Hasher
	events   EventPublisher
	now      func() time.Time
	tokenTTL time.Duration

	// dummyDigest is compared against when no user matches a login
	dummyDigest string
}

// Option configures a Service
type Option func(*Service)

// WithEvents sets the auth event publisher
func WithEvents(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTokenTTL overrides the session token lifetime
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// NewService creates a new auth service
func NewService(repo Repository, hasher Hasher, opts ...Option) (*Service, error) {
	s := &Service{
		repo:     repo,
		hasher:   hasher,
		events:   noopPublisher{},
		now:      time.Now,
		tokenTTL: DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := generateToken(16)
	if err != nil {
		return nil, err
	}
	if s.dummyDigest, err = hasher.Hash(dummy); err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return s, nil
}

// RegisterRequest contains registration data
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Program   string
	YearLevel string
}

// Register creates a new active user account and its welcome notification
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	user := &domain.User{
		Username:  Sanitize(req.Username),
		Email:     Sanitize(req.Email),
		FirstName: Sanitize(req.FirstName),
		LastName:  Sanitize(req.LastName),
		Program:   Sanitize(req.Program),
		YearLevel: Sanitize(req.YearLevel),
		Status:    domain.UserStatusActive,
	}

	required := []struct {
		name  string
		value string
	}{
		{"username", user.Username},
		{"email", user.Email},
		{"password", req.Password},
		{"firstName", user.FirstName},
		{"lastName", user.LastName},
		{"program", user.Program},
		{"yearLevel", user.YearLevel},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, domain.Validation("Field " + f.name + " is required")
		}
	}

	if !ValidEmail(user.Email) {
		return nil, domain.Validation("Invalid email format")
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, domain.Validation("Password must be at least 6 characters")
	}

	exists, err := s.repo.UserExists(ctx, user.Username, user.Email)
	if err != nil {
		return nil, domain.Internal("Registration failed", err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	user.PasswordHash, err = s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, domain.Validation("Password must be at most 72 bytes")
		}
		return nil, domain.Internal("Registration failed", err)
	}

	now := s.now()
	user.CreatedAt = now
	if err := s.repo.RegisterUser(ctx, user, domain.WelcomeNotification(0, now)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, domain.Internal("Registration failed", err)
	}

	s.events.Publish(domain.NewAuthEvent(domain.EventUserRegistered, user.ID, user.Username, now))
	return user, nil
}

// LoginRequest contains login credentials
type LoginRequest struct {
	// Login is a username or an email address
	Login     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResponse contains login result
type LoginResponse struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

// Login authenticates an active user and issues a session token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	login := Sanitize(req.Login)
	if login == "" || req.Password == "" {
		return nil, domain.Validation("Username and password required")
	}

	user, err := s.repo.GetActiveUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Internal("Login failed", err)
	}
	if user == nil || !user.IsActive() {
		s.hasher.Verify(req.Password, s.dummyDigest)
		s.events.Publish(domain.NewAuthEvent(domain.EventLoginFailed, 0, "", s.now()))
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.events.Publish(domain.NewAuthEvent(domain.EventLoginFailed, user.ID, user.Username, s.now()))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := generateToken(tokenBytes)
	if err != nil {
		return nil, domain.Internal("Login failed", err)
	}

	now := s.now()
	session := &domain.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(s.tokenTTL),
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		CreatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, domain.Internal("Login failed", err)
	}

	s.events.Publish(domain.NewAuthEvent(domain.EventUserLoggedIn, user.ID, user.Username, now))
	return &LoginResponse{
		User:    user,
		Session: session,
		Token:   token,
	}, nil
}

// Logout revokes every session token of the identified user. A nil identity
// is a no-op.
func (s *Service) Logout(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return nil
	}

	revoked, err := s.repo.DeleteUserSessions(ctx, identity.UserID)
	if err != nil {
		return domain.Internal("Logout failed", err)
	}

	event := domain.NewAuthEvent(domain.EventUserLoggedOut, identity.UserID, identity.Username, s.now())
	event.Revoked = revoked
	s.events.Publish(event)
	return nil
}

// CheckAuth re-reads the identified user. It returns nil when there is no
// identity or the user is gone or no longer active.
func (s *Service) CheckAuth(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, nil
	}

	user, err := s.repo.GetUserByID(ctx, identity.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal("Authentication check failed", err)
	}
	if !user.IsActive() {
		return nil, nil
	}
	return user, nil
}

// Profile returns the identified user's profile
func (s *Service) Profile(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, domain.ErrAuthRequired
	}

	user, err := s.repo.GetUserByID(ctx, identity.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, domain.Internal("Failed to load profile", err)
	}
	return user, nil
}

// ValidateToken resolves a bearer token to an identity. Expired tokens are
// deleted.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.repo.GetSessionByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, domain.Internal("Token validation failed", err)
	}

	if session.IsExpired(s.now()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Internal("Token validation failed", err)
		}
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, domain.Internal("Token validation failed", err)
	}
	if !user.IsActive() {
		return nil, domain.ErrInvalidCredentials
	}

	return &domain.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		Source:      domain.SourceToken,
		SessionID:   token,
	}, nil
}

// ListSessions returns the identified user's unexpired session tokens
func (s *Service) ListSessions(ctx context.Context, identity *domain.Identity) ([]*domain.Session, error) {
	if identity == nil {
		return nil, domain.ErrAuthRequired
	}

	sessions, err := s.repo.ListUserSessions(ctx, identity.UserID, s.now())
	if err != nil {
		return nil, domain.Internal("Failed to list sessions", err)
	}
	return sessions, nil
}

// CleanupExpiredSessions removes all expired sessions
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now())
}

// generateToken creates a cryptographically secure random hex token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
