package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/google/uuid"
)

type message struct {
	queue string
	body  []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []message
	calls    int
	err      error
}

func (f *fakePublisher) PublishJSON(_ context.Context, queue string, data any) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message{queue: queue, body: body})
	return nil
}

func TestProducer_PublishAuthEvent(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub, nil)

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	event := domain.NewAuthEvent(domain.EventUserLoggedIn, 7, "alice", at)

	if err := p.PublishAuthEvent(context.Background(), event); err != nil {
		t.Fatalf("PublishAuthEvent() error = %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.queue != AuthEventsQueueName {
		t.Errorf("queue = %q; want %q", msg.queue, AuthEventsQueueName)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.body, &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got["type"] != "user.logged_in" {
		t.Errorf("type = %v", got["type"])
	}
	if got["username"] != "alice" {
		t.Errorf("username = %v", got["username"])
	}
	if got["user_id"] != float64(7) {
		t.Errorf("user_id = %v", got["user_id"])
	}
	if _, err := uuid.Parse(got["id"].(string)); err != nil {
		t.Errorf("id is not a uuid: %v", got["id"])
	}
	if got["occurred_at"] != "2026-03-02T09:00:00Z" {
		t.Errorf("occurred_at = %v", got["occurred_at"])
	}
}

func TestProducer_PublishAuthEvent_Error(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	p := NewProducer(pub, nil)

	err := p.PublishAuthEvent(context.Background(), domain.NewAuthEvent(domain.EventLoginFailed, 0, "", time.Now()))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, pub.err) {
		t.Errorf("error should wrap publisher error, got %v", err)
	}
}

func TestProducer_OpensCircuitAfterRepeatedFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	p := NewProducer(pub, nil)

	for i := 0; i < breakerThreshold+3; i++ {
		err := p.PublishAuthEvent(context.Background(), domain.NewAuthEvent(domain.EventUserLoggedIn, 1, "alice", time.Now()))
		if err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}

	if pub.calls != breakerThreshold {
		t.Errorf("publisher calls = %d, want %d once the circuit is open", pub.calls, breakerThreshold)
	}
}

func TestProducer_Handle(t *testing.T) {
	t.Run("publishes auth events", func(t *testing.T) {
		pub := &fakePublisher{}
		p := NewProducer(pub, nil)

		p.Handle(domain.NewAuthEvent(domain.EventUserRegistered, 1, "alice", time.Now()))

		if len(pub.messages) != 1 {
			t.Errorf("expected 1 message, got %d", len(pub.messages))
		}
	})

	t.Run("swallows publish failures", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker down")}
		p := NewProducer(pub, nil)

		p.Handle(domain.NewAuthEvent(domain.EventUserLoggedOut, 1, "alice", time.Now()))
	})

	t.Run("wired through dispatcher", func(t *testing.T) {
		pub := &fakePublisher{}
		p := NewProducer(pub, nil)

		d := domain.NewEventDispatcher()
		d.SubscribeAll(p.Handle)
		d.Publish(domain.NewAuthEvent(domain.EventUserLoggedIn, 1, "alice", time.Now()))
		d.Publish(domain.NewAuthEvent(domain.EventUserLoggedOut, 1, "alice", time.Now()))

		if len(pub.messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(pub.messages))
		}
	})
}
