//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/felixgeelhaar/classtrack/internal/storage/postgres"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres creates a migrated PostgreSQL database in a container
func setupPostgres(t *testing.T) *postgres.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "classtrack",
				"POSTGRES_PASSWORD": "classtrack",
				"POSTGRES_DB":       "classtrack",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get port: %v", err)
	}

	url := fmt.Sprintf("postgres://classtrack:classtrack@%s:%s/classtrack?sslmode=disable", host, port.Port())
	db, err := postgres.Connect(ctx, url, postgres.DefaultConnectConfig)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func newUser(username, email string, now time.Time) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$digest",
		FirstName:    "Alice",
		LastName:     "Smith",
		Program:      "BSCS",
		YearLevel:    "2",
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
	}
}

func TestIntegration_Postgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("migrate is idempotent", func(t *testing.T) {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("second Migrate() error = %v", err)
		}
		if v, _ := db.Version(ctx); v != 1 {
			t.Errorf("Version() = %d, want 1", v)
		}
	})

	auth := postgres.NewAuthStore(db)
	alice := newUser("alice", "a@b.com", now)

	t.Run("register and unique violations", func(t *testing.T) {
		if err := auth.RegisterUser(ctx, alice, domain.WelcomeNotification(0, now)); err != nil {
			t.Fatalf("RegisterUser() error = %v", err)
		}
		err := auth.RegisterUser(ctx, newUser("alice", "other@b.com", now), domain.WelcomeNotification(0, now))
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("duplicate RegisterUser() error = %v, want conflict", err)
		}

		got, err := auth.GetActiveUserByLogin(ctx, "a@b.com")
		if err != nil || got.ID != alice.ID {
			t.Fatalf("GetActiveUserByLogin() = %v, %v", got, err)
		}
	})

	t.Run("session lifecycle", func(t *testing.T) {
		for i, ip := range []string{"10.0.0.1", "::1", ""} {
			s := &domain.Session{
				UserID:    alice.ID,
				Token:     strings.Repeat(fmt.Sprint(i), 64),
				ExpiresAt: now.Add(time.Hour),
				IPAddress: ip,
				UserAgent: "test",
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}
			if err := auth.CreateSession(ctx, s); err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
		}

		got, err := auth.GetSessionByToken(ctx, strings.Repeat("0", 64))
		if err != nil {
			t.Fatalf("GetSessionByToken() error = %v", err)
		}
		if got.IPAddress != "10.0.0.1" {
			t.Errorf("IPAddress = %q, want 10.0.0.1", got.IPAddress)
		}

		list, err := auth.ListUserSessions(ctx, alice.ID, now)
		if err != nil || len(list) != 3 {
			t.Fatalf("ListUserSessions() = %d, %v; want 3", len(list), err)
		}

		removed, err := auth.DeleteUserSessions(ctx, alice.ID)
		if err != nil || removed != 3 {
			t.Errorf("DeleteUserSessions() = %d, %v; want 3", removed, err)
		}
	})

	t.Run("courses are scoped by user", func(t *testing.T) {
		bob := newUser("bob", "bob@b.com", now)
		if err := auth.RegisterUser(ctx, bob, nil); err != nil {
			t.Fatalf("RegisterUser() error = %v", err)
		}

		courses := postgres.NewCourseStore(db)
		c := &domain.Course{UserID: alice.ID, CourseCode: "CS101", CourseTitle: "Intro", CreatedAt: now, UpdatedAt: now}
		if err := courses.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		dup := *c
		if err := courses.Create(ctx, &dup); !errors.Is(err, domain.ErrConflict) {
			t.Errorf("duplicate Create() error = %v", err)
		}
		if _, err := courses.GetByIDAndUser(ctx, c.ID, bob.ID); err != domain.ErrCourseNotFound {
			t.Errorf("GetByIDAndUser() by bob error = %v", err)
		}
		if err := courses.Delete(ctx, c.ID, bob.ID); err != domain.ErrCourseNotFound {
			t.Errorf("Delete() by bob error = %v", err)
		}
	})

	t.Run("notifications", func(t *testing.T) {
		notifications := postgres.NewNotificationStore(db)
		items, err := notifications.ListByUser(ctx, alice.ID, 10)
		if err != nil || len(items) != 1 || items[0].Title != "Welcome to ClassTrack!" {
			t.Fatalf("ListByUser() = %v, %v", items, err)
		}
		if n, err := notifications.MarkAllRead(ctx, alice.ID); err != nil || n != 1 {
			t.Errorf("MarkAllRead() = %d, %v; want 1", n, err)
		}
	})
}
