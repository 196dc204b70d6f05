package sqlite

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// NotificationStore implements notification persistence backed by SQLite.
type NotificationStore struct {
	db *DB
}

// NewNotificationStore creates a new SQLite-backed notification store.
func NewNotificationStore(db *DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create inserts a notification.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Title, n.Message, string(n.Type), n.IsRead, utc(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("notification id: %w", err)
	}
	return nil
}

// ListByUser returns the user's newest notifications first.
func (s *NotificationStore) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := []*domain.Notification{}
	for rows.Next() {
		var (
			n   domain.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		items = append(items, &n)
	}
	return items, rows.Err()
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.RowsAffected()
}
