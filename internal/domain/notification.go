package domain

import "time"

// NotificationType categorizes a notification for the dashboard
type NotificationType string

const (
	NotificationGeneral    NotificationType = "general"
	NotificationAssignment NotificationType = "assignment"
	NotificationGrade      NotificationType = "grade"
	NotificationReminder   NotificationType = "reminder"
)

// Notification is a message shown in a user's notification panel
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
}

// WelcomeNotification builds the notification every new account receives
func WelcomeNotification(userID int64, now time.Time) *Notification {
	return &Notification{
		UserID:    userID,
		Title:     "Welcome to ClassTrack!",
		Message:   "Welcome to ClassTrack! Start by adding your courses and assignments to stay organized.",
		Type:      NotificationGeneral,
		CreatedAt: now,
	}
}
