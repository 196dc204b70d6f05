package auth

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// mockRepository is a test implementation of Repository
type mockRepository struct {
	mu            sync.Mutex
	users         map[int64]*domain.User
	sessions      map[string]*domain.Session
	notifications []*domain.Notification
	nextID        int64

	existsErr   error
	registerErr error
	sessionErr  error
	deleteErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[int64]*domain.User),
		sessions: make(map[string]*domain.Session),
	}
}

func (m *mockRepository) RegisterUser(ctx context.Context, user *domain.User, welcome *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registerErr != nil {
		return m.registerErr
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	welcome.UserID = user.ID
	m.notifications = append(m.notifications, welcome)
	return nil
}

func (m *mockRepository) UserExists(ctx context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) GetActiveUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (u.Username == login || u.Email == login) && u.IsActive() {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionErr != nil {
		return m.sessionErr
	}
	session.ID = int64(len(m.sessions) + 1)
	m.sessions[session.Token] = session
	return nil
}

func (m *mockRepository) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockRepository) ListUserSessions(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Session
	for _, s := range m.sessions {
		if s.UserID == userID && !s.IsExpired(now) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockRepository) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *mockRepository) DeleteUserSessions(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) sessionCount(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingPublisher) Publish(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}
