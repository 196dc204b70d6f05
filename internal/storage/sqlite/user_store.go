package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	program, year_level, status, created_at`

// AuthStore implements the credential and session token stores backed by SQLite.
type AuthStore struct {
	db *DB
}

// NewAuthStore creates a new SQLite-backed auth store.
func NewAuthStore(db *DB) *AuthStore {
	return &AuthStore{db: db}
}

// RegisterUser inserts a user and its welcome notification in one transaction.
func (s *AuthStore) RegisterUser(ctx context.Context, user *domain.User, welcome *domain.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback()

	status := user.Status
	if status == "" {
		status = domain.UserStatusActive
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name,
			program, year_level, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Program, user.YearLevel, string(status), utc(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", translate(err, domain.ErrUserAlreadyExists))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}

	if welcome != nil {
		welcome.UserID = id
		res, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, welcome.Title, welcome.Message, string(welcome.Type), welcome.IsRead, utc(welcome.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert welcome notification: %w", err)
		}
		if welcome.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("notification id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register tx: %w", err)
	}
	user.ID = id
	user.Status = status
	return nil
}

// UserExists reports whether any user, in any status, has the username or email.
func (s *AuthStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, email,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return n > 0, nil
}

// GetActiveUserByLogin finds an active user by username or email.
func (s *AuthStore) GetActiveUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE (username = ? OR email = ?) AND status = 'active'
		LIMIT 1`, login, login)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID.
func (s *AuthStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// SetUserStatus changes the lifecycle state of a user. It is an administrative
// hook outside the HTTP surface; tests use it to suspend accounts.
func (s *AuthStore) SetUserStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	if !status.Valid() {
		return domain.Validation("Invalid status")
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u      domain.User
		status string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Program, &u.YearLevel, &status, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Status = domain.UserStatus(status)
	return &u, nil
}

// CreateSession inserts a new session token.
func (s *AuthStore) CreateSession(ctx context.Context, session *domain.Session) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (user_id, session_token, expires_at, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.UserID, session.Token, utc(session.ExpiresAt),
		session.IPAddress, session.UserAgent, utc(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	session.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	return nil
}

const sessionColumns = "id, user_id, session_token, expires_at, ip_address, user_agent, created_at"

// GetSessionByToken retrieves a session by token regardless of expiry.
func (s *AuthStore) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM user_sessions WHERE session_token = ?", token)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListUserSessions returns the user's sessions that are still valid at now, newest first.
func (s *AuthStore) ListUserSessions(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions WHERE user_id = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC`, userID, utc(now))
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

// DeleteSession removes a single session token.
func (s *AuthStore) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE session_token = ?", token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteUserSessions removes every session token of a user.
func (s *AuthStore) DeleteUserSessions(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return res.RowsAffected()
}

// DeleteExpiredSessions removes sessions whose expiry is at or before now.
func (s *AuthStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE expires_at <= ?", utc(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func scanSession(row rowScanner) (*domain.Session, error) {
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

// Ping checks the database connection.
func (s *AuthStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
