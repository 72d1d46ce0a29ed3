package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

var _ course.EventPublisher = (*Producer)(nil)

// jsonPublisher is the part of Connection the producer needs
type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, data any) error
}

// ProducerConfig tunes the resilience around publishing
type ProducerConfig struct {
	// MaxAttempts per event, including the first (default: 3)
	MaxAttempts int

	// RetryDelay before the first retry (default: 200ms)
	RetryDelay time.Duration

	// TripAfter consecutive failures opens the circuit (default: 5)
	TripAfter int

	// OpenTimeout before a half-open probe (default: 30s)
	OpenTimeout time.Duration

	Logger *slog.Logger
}

// DefaultProducerConfig returns sensible defaults
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		MaxAttempts: 3,
		RetryDelay:  200 * time.Millisecond,
		TripAfter:   5,
		OpenTimeout: 30 * time.Second,
	}
}

// Producer publishes course events to the events exchange. Each event is
// retried with backoff behind a circuit breaker.
type Producer struct {
	conn    jsonPublisher
	breaker circuitbreaker.CircuitBreaker[struct{}]
	retrier retry.Retry[struct{}]
	logger  *slog.Logger
}

// NewProducer creates a new event producer
func NewProducer(conn *Connection, cfg ProducerConfig) *Producer {
	return newProducer(conn, cfg)
}

func newProducer(conn jsonPublisher, cfg ProducerConfig) *Producer {
	def := DefaultProducerConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = def.TripAfter
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Producer{conn: conn, logger: logger}

	p.breaker = circuitbreaker.New[struct{}](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.TripAfter
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("event publisher circuit state change",
				"from", from.String(),
				"to", to.String())
		},
	})

	p.retrier = retry.New[struct{}](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.RetryDelay,
		MaxDelay:      10 * cfg.RetryDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
	})

	return p
}

// Publish sends events in order, stopping at the first one that cannot be
// delivered
func (p *Producer) Publish(ctx context.Context, events []domain.Event) error {
	for _, e := range events {
		msg, err := NewEventMessage(e)
		if err != nil {
			return err
		}

		_, err = p.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
			return p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, p.conn.PublishJSON(ctx, msg.Type, msg)
			})
		})
		if err != nil {
			return fmt.Errorf("failed to publish %s event: %w", msg.Type, err)
		}

		p.logger.Debug("published event",
			"event_id", msg.ID,
			"type", msg.Type,
			"aggregate_id", msg.AggregateID,
		)
	}
	return nil
}
