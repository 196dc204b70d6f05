// Package notification serves a user's in-app notifications.
package notification

import (
	"context"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// DefaultLimit bounds how many notifications List returns
const DefaultLimit = 50

// Repository defines the interface for notification data access
type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// Service handles notification operations
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Notify creates a notification for userID
func (s *Service) Notify(ctx context.Context, userID int64, title, message string, typ domain.NotificationType) (*domain.Notification, error) {
	if title == "" || message == "" {
		return nil, domain.Validation("Title and message required")
	}
	if typ == "" {
		typ = domain.NotificationGeneral
	}

	n := &domain.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, domain.Internal("Failed to create notification", err)
	}
	return n, nil
}

// List returns the user's newest notifications and how many are unread
func (s *Service) List(ctx context.Context, userID int64) ([]*domain.Notification, int, error) {
	items, err := s.repo.ListByUser(ctx, userID, DefaultLimit)
	if err != nil {
		return nil, 0, domain.Internal("Failed to load notifications", err)
	}

	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	return items, unread, nil
}

// MarkAllRead marks every notification of the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, domain.Internal("Failed to update notifications", err)
	}
	return n, nil
}
