package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	program, year_level, status, created_at`

// AuthStore implements the credential and session token stores using PostgreSQL
type AuthStore struct {
	db *DB
}

// NewAuthStore creates a new PostgreSQL auth store
func NewAuthStore(db *DB) *AuthStore {
	return &AuthStore{db: db}
}

// RegisterUser inserts a user and its welcome notification in one transaction
func (s *AuthStore) RegisterUser(ctx context.Context, user *domain.User, welcome *domain.Notification) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback(ctx)

	status := user.Status
	if status == "" {
		status = domain.UserStatusActive
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name,
			program, year_level, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Program, user.YearLevel, string(status), user.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert user: %w", translate(err, domain.ErrUserAlreadyExists))
	}

	if welcome != nil {
		welcome.UserID = id
		err = tx.QueryRow(ctx, `
			INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			id, welcome.Title, welcome.Message, string(welcome.Type), welcome.IsRead, welcome.CreatedAt,
		).Scan(&welcome.ID)
		if err != nil {
			return fmt.Errorf("insert welcome notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit register tx: %w", err)
	}
	user.ID = id
	user.Status = status
	return nil
}

// UserExists reports whether any user, in any status, has the username or email
func (s *AuthStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)", username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// GetActiveUserByLogin finds an active user by username or email
func (s *AuthStore) GetActiveUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE (username = $1 OR email = $1) AND status = 'active'
		LIMIT 1`, login)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID
func (s *AuthStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.Pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// SetUserStatus changes the lifecycle state of a user. It is an administrative
// hook outside the HTTP surface; tests use it to suspend accounts.
func (s *AuthStore) SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	if !status.Valid() {
		return domain.Validation("Invalid status")
	}
	tag, err := s.db.Pool.Exec(ctx, "UPDATE users SET status = $1 WHERE id = $2", string(status), id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u      domain.User
		status string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Program, &u.YearLevel, &status, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Status = domain.UserStatus(status)
	return &u, nil
}

// CreateSession inserts a new session token
func (s *AuthStore) CreateSession(ctx context.Context, session *domain.Session) error {
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO user_sessions (user_id, session_token, expires_at, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		session.UserID, session.Token, session.ExpiresAt,
		inet(session.IPAddress), session.UserAgent, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

const sessionColumns = `id, user_id, session_token, expires_at,
	COALESCE(host(ip_address), ''), user_agent, created_at`

// GetSessionByToken retrieves a session by token regardless of expiry
func (s *AuthStore) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := s.db.Pool.QueryRow(ctx,
		"SELECT "+sessionColumns+" FROM user_sessions WHERE session_token = $1", token)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListUserSessions returns the user's sessions still valid at now, newest first
func (s *AuthStore) ListUserSessions(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC, id DESC`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a single session token
func (s *AuthStore) DeleteSession(ctx context.Context, token string) error {
	tag, err := s.db.Pool.Exec(ctx, "DELETE FROM user_sessions WHERE session_token = $1", token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteUserSessions removes every session token of a user
func (s *AuthStore) DeleteUserSessions(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, "DELETE FROM user_sessions WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpiredSessions removes sessions whose expiry is at or before now
func (s *AuthStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, "DELETE FROM user_sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID, &session.UserID, &session.Token, &session.ExpiresAt,
		&session.IPAddress, &session.UserAgent, &session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Ping checks the database connection
func (s *AuthStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
