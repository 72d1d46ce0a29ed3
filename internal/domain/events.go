package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Event Interface and Base Event
// -----------------------------------------------------------------------------

// Event represents a domain event
type Event interface {
	// EventID returns the unique identifier for this event
	EventID() uuid.UUID
	// EventType returns the type name of this event
	EventType() string
	// OccurredAt returns when this event occurred
	OccurredAt() time.Time
	// AggregateID returns the ID of the aggregate that produced this event
	AggregateID() uuid.UUID
	// AggregateType returns the type of aggregate that produced this event
	AggregateType() string
}

// BaseEvent provides common event fields
type BaseEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateUUID uuid.UUID `json:"aggregate_id"`
	AggregateName string    `json:"aggregate_type"`
}

// NewBaseEvent creates a new BaseEvent
func NewBaseEvent(eventType, aggregateType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggregateUUID: aggregateID,
		AggregateName: aggregateType,
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventType() string      { return e.Type }
func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateUUID }
func (e BaseEvent) AggregateType() string  { return e.AggregateName }

// -----------------------------------------------------------------------------
// Event Handler and Dispatcher
// -----------------------------------------------------------------------------

// EventHandler processes domain events
type EventHandler func(event Event)

// EventDispatcher manages event subscriptions and publishing
type EventDispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]EventHandler
	allHandlers []EventHandler // handlers for all events
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type
func (d *EventDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (d *EventDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allHandlers = append(d.allHandlers, handler)
}

// Publish dispatches an event to all registered handlers
func (d *EventDispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if handlers, ok := d.handlers[event.EventType()]; ok {
		for _, h := range handlers {
			h(event)
		}
	}

	for _, h := range d.allHandlers {
		h(event)
	}
}

// PublishAll dispatches multiple events
func (d *EventDispatcher) PublishAll(events []Event) {
	for _, event := range events {
		d.Publish(event)
	}
}

// -----------------------------------------------------------------------------
// Aggregate Root with Event Support
// -----------------------------------------------------------------------------

// EventRecorder is an interface for aggregates that record events
type EventRecorder interface {
	// RecordedEvents returns events recorded since last clear
	RecordedEvents() []Event
	// ClearEvents clears recorded events (typically after persistence)
	ClearEvents()
}

// AggregateRoot provides base functionality for aggregates with event recording
type AggregateRoot struct {
	events []Event
}

// RecordEvent adds an event to the aggregate's recorded events
func (a *AggregateRoot) RecordEvent(event Event) {
	a.events = append(a.events, event)
}

// RecordedEvents returns all recorded events
func (a *AggregateRoot) RecordedEvents() []Event {
	return a.events
}

// ClearEvents clears recorded events
func (a *AggregateRoot) ClearEvents() {
	a.events = nil
}

// -----------------------------------------------------------------------------
// Course Events
// -----------------------------------------------------------------------------

// Event type names
const (
	EventCourseCreated   = "course.created"
	EventTaskAdded       = "course.task_added"
	EventCoursePublished = "course.published"
)

const courseAggregate = "Course"

// CourseCreatedEvent is recorded when an instructor opens a new course
type CourseCreatedEvent struct {
	BaseEvent
	InstructorID uuid.UUID `json:"instructor_id"`
	Title        string    `json:"title"`
}

// NewCourseCreatedEvent creates a new course created event
func NewCourseCreatedEvent(courseID CourseID, instructorID UserID, title string) CourseCreatedEvent {
	return CourseCreatedEvent{
		BaseEvent:    NewBaseEvent(EventCourseCreated, courseAggregate, courseID.UUID()),
		InstructorID: instructorID.UUID(),
		Title:        title,
	}
}

// TaskAddedEvent is recorded when a task lands in a course's sequence
type TaskAddedEvent struct {
	BaseEvent
	TaskID    uuid.UUID `json:"task_id"`
	Category  Category  `json:"category"`
	Statement string    `json:"statement"`
	Position  int       `json:"position"`
}

// NewTaskAddedEvent creates a new task added event
func NewTaskAddedEvent(courseID CourseID, task *Task) TaskAddedEvent {
	return TaskAddedEvent{
		BaseEvent: NewBaseEvent(EventTaskAdded, courseAggregate, courseID.UUID()),
		TaskID:    task.ID().UUID(),
		Category:  task.Category(),
		Statement: task.Statement(),
		Position:  task.Position(),
	}
}

// CoursePublishedEvent is recorded when a course leaves BUILDING
type CoursePublishedEvent struct {
	BaseEvent
	InstructorID uuid.UUID `json:"instructor_id"`
	PublishedAt  time.Time `json:"published_at"`
	TaskCount    int       `json:"task_count"`
}

// NewCoursePublishedEvent creates a new course published event
func NewCoursePublishedEvent(courseID CourseID, instructorID UserID, publishedAt time.Time, taskCount int) CoursePublishedEvent {
	return CoursePublishedEvent{
		BaseEvent:    NewBaseEvent(EventCoursePublished, courseAggregate, courseID.UUID()),
		InstructorID: instructorID.UUID(),
		PublishedAt:  publishedAt,
		TaskCount:    taskCount,
	}
}
