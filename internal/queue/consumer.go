package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventHandler processes one delivered event
type EventHandler func(ctx context.Context, msg *EventMessage) error

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	// Queue to consume. Empty declares an exclusive, auto-deleted queue bound
	// to the events exchange, which is what a tail wants.
	Queue string

	// BindingKey for the exclusive queue (default: course.#)
	BindingKey string

	Workers  int // Number of concurrent workers
	Prefetch int // Prefetch count per worker
}

// DefaultConsumerConfig returns sensible defaults
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		BindingKey: CourseRouting,
		Workers:    1,
		Prefetch:   10,
	}
}

// Consumer reads course events from RabbitMQ
type Consumer struct {
	conn       *Connection
	handler    EventHandler
	cfg        ConsumerConfig
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewConsumer creates a new event consumer
func NewConsumer(conn *Connection, handler EventHandler, cfg ConsumerConfig) *Consumer {
	return &Consumer{
		conn:    conn,
		handler: handler,
		cfg:     withConsumerDefaults(cfg),
		logger:  slog.Default(),
	}
}

func withConsumerDefaults(cfg ConsumerConfig) ConsumerConfig {
	if cfg.BindingKey == "" {
		cfg.BindingKey = CourseRouting
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 10
	}
	return cfg
}

// Start begins consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	queue := c.cfg.Queue
	if queue == "" {
		q, err := ch.QueueDeclare("", false, true, true, false, nil)
		if err != nil {
			return fmt.Errorf("failed to declare tail queue: %w", err)
		}
		if err := ch.QueueBind(q.Name, c.cfg.BindingKey, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind tail queue: %w", err)
		}
		queue = q.Name
	}

	msgs, err := ch.Consume(
		queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("starting event consumer",
		"queue", queue,
		"workers", c.cfg.Workers,
		"prefetch", c.cfg.Prefetch,
	)

	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgs)
	}

	return nil
}

// worker processes messages from the queue
func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgs:
			if !ok {
				c.logger.Info("message channel closed", "worker_id", id)
				return
			}
			c.processMessage(ctx, id, msg)
		}
	}
}

// processMessage decodes and handles a single delivery. Malformed messages
// are rejected outright; a failing handler gets one redelivery.
func (c *Consumer) processMessage(ctx context.Context, workerID int, msg amqp.Delivery) {
	var event EventMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error("failed to unmarshal event",
			"worker_id", workerID,
			"error", err,
		)
		_ = msg.Reject(false)
		return
	}

	if err := c.handler(ctx, &event); err != nil {
		c.logger.Error("event handler failed",
			"worker_id", workerID,
			"event_id", event.ID,
			"type", event.Type,
			"redelivered", msg.Redelivered,
			"error", err,
		)
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message",
			"worker_id", workerID,
			"event_id", event.ID,
			"error", err,
		)
	}
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	c.logger.Info("consumer stopped")
}
