package course

import (
	"context"
	"time"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// Repository persists course aggregates.
//
// Update loads the course, applies fn and saves the result as one unit. Calls
// for the same course are serialized; fn runs at most once per call and the
// changes are discarded when it returns an error.
type Repository interface {
	Create(ctx context.Context, course *domain.Course) error
	Get(ctx context.Context, id domain.CourseID) (*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
	Update(ctx context.Context, id domain.CourseID, fn func(*domain.Course) error) (*domain.Course, error)
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
}

// ReportSource reads per-course aggregates for an instructor.
type ReportSource interface {
	InstructorCourses(ctx context.Context, instructorID domain.UserID) ([]ReportItem, error)
}

// EventPublisher forwards recorded domain events after a successful write.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event) error
}

// ReportItem is one course row in an instructor report.
type ReportItem struct {
	CourseID    domain.CourseID
	Title       string
	Status      domain.Status
	PublishedAt *time.Time
	TaskCount   int
	Categories  []domain.Category
}

// Store bundles the persistence ports. The SQLite and PostgreSQL backends
// each provide one.
type Store struct {
	Courses Repository
	Users   UserRepository
	Reports ReportSource
}
