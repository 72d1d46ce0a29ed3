//go:build integration

package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/felixgeelhaar/coursework/internal/domain"
	"github.com/felixgeelhaar/coursework/internal/queue"
)

// setupRabbitMQ creates a RabbitMQ container for testing
func setupRabbitMQ(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		testcontainers.TerminateContainer(container)
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return amqpURL, cleanup
}

func courseEvents() []domain.Event {
	courseID := domain.GenerateCourseID()
	instructorID := domain.GenerateUserID()
	return []domain.Event{
		domain.NewCourseCreatedEvent(courseID, instructorID, "Go basics"),
		domain.NewCoursePublishedEvent(courseID, instructorID, time.Now(), 3),
	}
}

func TestIntegration_Connection_ConnectAndClose(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("expected connection to be active")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close connection: %v", err)
	}
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	_, err := queue.NewConnection("amqp://invalid:5672")
	if err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_Producer_RoutesToDurableQueue(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	producer := queue.NewProducer(conn, queue.DefaultProducerConfig())
	if err := producer.Publish(context.Background(), courseEvents()); err != nil {
		t.Fatalf("failed to publish events: %v", err)
	}

	// Publishing is asynchronous on the broker side
	deadline := time.Now().Add(5 * time.Second)
	for {
		q, err := conn.Channel().QueueDeclarePassive(queue.EventsQueueName, true, false, false, false, nil)
		if err != nil {
			t.Fatalf("failed to inspect queue: %v", err)
		}
		if q.Messages == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 messages in queue, got %d", q.Messages)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestIntegration_Consumer_TailsEvents(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		mu       sync.Mutex
		received []*queue.EventMessage
	)
	receivedCh := make(chan struct{}, 5)

	handler := func(ctx context.Context, msg *queue.EventMessage) error {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
		receivedCh <- struct{}{}
		return nil
	}

	consumer := queue.NewConsumer(conn, handler, queue.DefaultConsumerConfig())
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("failed to start consumer: %v", err)
	}
	defer consumer.Stop()

	events := courseEvents()
	producer := queue.NewProducer(conn, queue.DefaultProducerConfig())
	if err := producer.Publish(ctx, events); err != nil {
		t.Fatalf("failed to publish events: %v", err)
	}

	for i := range events {
		select {
		case <-receivedCh:
		case <-ctx.Done():
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, e := range events {
		if received[i].ID != e.EventID() {
			t.Errorf("received[%d].ID = %v; want %v", i, received[i].ID, e.EventID())
		}
		if received[i].Type != e.EventType() {
			t.Errorf("received[%d].Type = %q; want %q", i, received[i].Type, e.EventType())
		}
	}
}
