package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

const (
	// publishTimeout bounds a single best-effort event publish
	publishTimeout = 2 * time.Second

	// breakerThreshold consecutive failures open the circuit for breakerCooldown
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// Publisher sends a JSON message to a named queue
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, data any) error
}

// Producer publishes auth events to the queue
type Producer struct {
	pub     Publisher
	breaker circuitbreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewProducer creates a new queue producer. Publishing stops for a cooldown
// period after repeated broker failures.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		pub:    pub,
		logger: logger,
		breaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     breakerCooldown,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerThreshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("event queue circuit state change",
					"from", from.String(),
					"to", to.String())
			},
		}),
	}
}

// PublishAuthEvent publishes an auth event to the auth events queue
func (p *Producer) PublishAuthEvent(ctx context.Context, event domain.AuthEvent) error {
	var pubErr error
	_, err := p.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		pubErr = p.pub.PublishJSON(ctx, AuthEventsQueueName, event)
		return struct{}{}, pubErr
	})
	if pubErr != nil {
		err = pubErr
	}
	if err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}

	p.logger.Debug("published auth event",
		"event_id", event.ID,
		"type", event.Type,
		"user_id", event.UserID,
	)
	return nil
}

// Handle publishes event if it is an auth event. Failures are logged and
// dropped so the request that raised the event is never affected.
func (p *Producer) Handle(event domain.Event) {
	ae, ok := event.(domain.AuthEvent)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.PublishAuthEvent(ctx, ae); err != nil {
		p.logger.Warn("auth event dropped",
			"event_id", ae.ID,
			"type", ae.Type,
			"error", err,
		)
	}
}
