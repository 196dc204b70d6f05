package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

func TestNotificationStore(t *testing.T) {
	db := openTestDB(t)
	users := NewAuthStore(db)
	store := NewNotificationStore(db)
	ctx := context.Background()
	alice := registerTestUser(t, users, "alice", "a@b.com")
	bob := registerTestUser(t, users, "bob", "bob@b.com")

	reminder := &domain.Notification{
		UserID:    alice.ID,
		Title:     "Quiz tomorrow",
		Message:   "CS101 quiz at 8:00",
		Type:      domain.NotificationReminder,
		CreatedAt: testNow.Add(time.Hour),
	}
	if err := store.Create(ctx, reminder); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	items, err := store.ListByUser(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListByUser() = %d items; want 2", len(items))
	}
	if items[0].Title != "Quiz tomorrow" || items[1].Title != "Welcome to ClassTrack!" {
		t.Errorf("order = %q, %q; want newest first", items[0].Title, items[1].Title)
	}
	if items[0].Type != domain.NotificationReminder || items[0].IsRead {
		t.Errorf("items[0] = %+v", items[0])
	}

	if limited, _ := store.ListByUser(ctx, alice.ID, 1); len(limited) != 1 {
		t.Errorf("limit not applied: %d", len(limited))
	}

	marked, err := store.MarkAllRead(ctx, alice.ID)
	if err != nil || marked != 2 {
		t.Fatalf("MarkAllRead() = %d, %v; want 2", marked, err)
	}
	if marked, _ := store.MarkAllRead(ctx, alice.ID); marked != 0 {
		t.Errorf("second MarkAllRead() = %d; want 0", marked)
	}

	bobs, _ := store.ListByUser(ctx, bob.ID, 10)
	if len(bobs) != 1 || bobs[0].IsRead {
		t.Errorf("bob's notifications should be untouched: %+v", bobs)
	}
}
