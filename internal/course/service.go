package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// Service runs the course authoring workflows on top of the domain model.
type Service struct {
	courses   Repository
	users     UserRepository
	reports   ReportSource
	publisher EventPublisher
	validator *AcceptanceValidator
	logger    *slog.Logger
}

// NewService creates a new course service
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		courses:   store.Courses,
		users:     store.Users,
		reports:   store.Reports,
		validator: NewAcceptanceValidator(store.Courses),
		logger:    logger,
	}
}

// SetPublisher sets where recorded domain events are forwarded
func (s *Service) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// RegisterUserRequest contains data for registering a user
type RegisterUserRequest struct {
	Name  string
	Email string
	Role  string
}

// RegisterUser creates a user with a unique email
func (s *Service) RegisterUser(ctx context.Context, req RegisterUserRequest) (*domain.User, error) {
	var errs domain.ValidationErrors

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, domain.NewFieldError("name", domain.ErrRequiredField, "name cannot be blank"))
	}
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		errs = append(errs, domain.NewFieldError("email", domain.ErrInvalidEmail, err.Error()))
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		errs = append(errs, domain.NewFieldError("role", domain.ErrRequiredField, err.Error()))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user := domain.NewUser(req.Name, email, role)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "role", user.Role)
	return user, nil
}

// CreateCourseRequest contains data for creating a course
type CreateCourseRequest struct {
	Title           string
	Description     string
	InstructorEmail string
}

// CreateCourse opens a new course for an instructor identified by email
func (s *Service) CreateCourse(ctx context.Context, req CreateCourseRequest) (*domain.Course, error) {
	email, err := domain.NewEmail(req.InstructorEmail)
	if err != nil {
		return nil, domain.NewFieldError("emailInstructor", domain.ErrInvalidEmail, err.Error())
	}

	instructor, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup instructor: %w", err)
	}

	course, err := domain.NewCourse(req.Title, req.Description, instructor)
	if err != nil {
		return nil, err
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("course created", "course_id", course.ID.String(), "instructor_id", course.InstructorID.String())
	s.publishEvents(ctx, course)
	return course, nil
}

// GetCourse returns a course with its tasks
func (s *Service) GetCourse(ctx context.Context, id domain.CourseID) (*domain.Course, error) {
	return s.courses.Get(ctx, id)
}

// ListCourses returns every course
func (s *Service) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	return s.courses.List(ctx)
}

// AddTaskRequest contains data for adding a task to a course
type AddTaskRequest struct {
	CourseID  domain.CourseID
	Category  domain.Category
	Statement string
	Position  int
	Options   []domain.TaskOption
}

// AddTask validates and inserts a task. Failures are reported in the order
// structural input, missing course, course state, statement uniqueness,
// position fit, option set.
func (s *Service) AddTask(ctx context.Context, req AddTaskRequest) (*domain.Task, error) {
	in := domain.TaskInput{
		Category:  req.Category,
		Statement: req.Statement,
		Position:  req.Position,
		Options:   req.Options,
	}
	if err := domain.ValidateTaskInput(req.CourseID, in); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(ctx, req.CourseID, in.Statement, in.Position); err != nil {
		return nil, err
	}

	var task *domain.Task
	course, err := s.courses.Update(ctx, req.CourseID, func(c *domain.Course) error {
		// another writer may have changed the course since Validate
		if verr := c.CheckTaskAcceptance(in.Statement, in.Position); verr != nil {
			return verr
		}
		t, err := domain.NewTask(c.ID, in)
		if err != nil {
			return err
		}
		if err := c.AddTask(t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task added",
		"course_id", course.ID.String(),
		"task_id", task.ID().String(),
		"category", task.Category(),
		"position", task.Position(),
	)
	s.publishEvents(ctx, course)
	return task, nil
}

// PublishCourse moves a course to PUBLISHED
func (s *Service) PublishCourse(ctx context.Context, id domain.CourseID) (*domain.Course, error) {
	course, err := s.courses.Update(ctx, id, func(c *domain.Course) error {
		return c.Publish()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course published", "course_id", course.ID.String(), "tasks", course.TaskCount())
	s.publishEvents(ctx, course)
	return course, nil
}

func (s *Service) publishEvents(ctx context.Context, course *domain.Course) {
	events := course.RecordedEvents()
	course.ClearEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		s.logger.Warn("failed to publish course events",
			"course_id", course.ID.String(),
			"events", len(events),
			"error", err,
		)
	}
}
