package handlers

import (
	"net/http"

	"github.com/felixgeelhaar/classtrack/internal/api/respond"
	"github.com/felixgeelhaar/classtrack/internal/notification"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	service *notification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *notification.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// List returns the newest notifications of the current user
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	items, unread, err := h.service.List(r.Context(), id.UserID)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to load notifications")
		return
	}

	response := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		response = append(response, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      string(n.Type),
			IsRead:    n.IsRead,
			CreatedAt: formatTime(n.CreatedAt),
		})
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": response,
		"unreadCount":   unread,
	})
}

// MarkAllRead marks every notification of the current user as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), id.UserID)
	if err != nil {
		respond.DomainError(w, r, err, "Failed to update notifications")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Notifications marked as read",
		"updated": updated,
	})
}
