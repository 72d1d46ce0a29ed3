package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID indicates an invalid identifier format
var ErrInvalidID = errors.New("invalid identifier format")

// -----------------------------------------------------------------------------
// UserID - Typed identifier for users
// -----------------------------------------------------------------------------

// UserID is a typed identifier for users
type UserID struct {
	value uuid.UUID
}

// NewUserID creates a new UserID from a UUID
func NewUserID(id uuid.UUID) UserID {
	return UserID{value: id}
}

// NewUserIDFromString creates a UserID from a string
func NewUserIDFromString(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("%w: user ID: %v", ErrInvalidID, err)
	}
	return UserID{value: id}, nil
}

// GenerateUserID creates a new random UserID
func GenerateUserID() UserID {
	return UserID{value: uuid.New()}
}

// UUID returns the underlying uuid.UUID
func (id UserID) UUID() uuid.UUID {
	return id.value
}

// String returns the string representation
func (id UserID) String() string {
	return id.value.String()
}

// IsZero returns true if this is a zero value
func (id UserID) IsZero() bool {
	return id.value == uuid.Nil
}

// Equal compares two UserIDs
func (id UserID) Equal(other UserID) bool {
	return id.value == other.value
}

// -----------------------------------------------------------------------------
// CourseID - Typed identifier for courses
// -----------------------------------------------------------------------------

// CourseID is a typed identifier for courses
type CourseID struct {
	value uuid.UUID
}

// NewCourseID creates a new CourseID from a UUID
func NewCourseID(id uuid.UUID) CourseID {
	return CourseID{value: id}
}

// NewCourseIDFromString creates a CourseID from a string
func NewCourseIDFromString(s string) (CourseID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CourseID{}, fmt.Errorf("%w: course ID: %v", ErrInvalidID, err)
	}
	return CourseID{value: id}, nil
}

// GenerateCourseID creates a new random CourseID
func GenerateCourseID() CourseID {
	return CourseID{value: uuid.New()}
}

// UUID returns the underlying uuid.UUID
func (id CourseID) UUID() uuid.UUID {
	return id.value
}

// String returns the string representation
func (id CourseID) String() string {
	return id.value.String()
}

// IsZero returns true if this is a zero value
func (id CourseID) IsZero() bool {
	return id.value == uuid.Nil
}

// Equal compares two CourseIDs
func (id CourseID) Equal(other CourseID) bool {
	return id.value == other.value
}

// -----------------------------------------------------------------------------
// TaskID - Typed identifier for tasks
// -----------------------------------------------------------------------------

// TaskID is a typed identifier for tasks
type TaskID struct {
	value uuid.UUID
}

// NewTaskID creates a new TaskID from a UUID
func NewTaskID(id uuid.UUID) TaskID {
	return TaskID{value: id}
}

// NewTaskIDFromString creates a TaskID from a string
func NewTaskIDFromString(s string) (TaskID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TaskID{}, fmt.Errorf("%w: task ID: %v", ErrInvalidID, err)
	}
	return TaskID{value: id}, nil
}

// GenerateTaskID creates a new random TaskID
func GenerateTaskID() TaskID {
	return TaskID{value: uuid.New()}
}

// UUID returns the underlying uuid.UUID
func (id TaskID) UUID() uuid.UUID {
	return id.value
}

// String returns the string representation
func (id TaskID) String() string {
	return id.value.String()
}

// IsZero returns true if this is a zero value
func (id TaskID) IsZero() bool {
	return id.value == uuid.Nil
}

// -----------------------------------------------------------------------------
// Email - Value object for email addresses
// -----------------------------------------------------------------------------

// emailPattern is a basic email validation pattern
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email is a value object for validated email addresses
type Email struct {
	value string
}

// NewEmail creates a new Email from a string
func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Email{}, fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}
	if !emailPattern.MatchString(s) {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return Email{value: s}, nil
}

// String returns the normalized email address
func (e Email) String() string {
	return e.value
}

// IsZero returns true if this is a zero value
func (e Email) IsZero() bool {
	return e.value == ""
}

// Equal compares two Email values
func (e Email) Equal(other Email) bool {
	return e.value == other.value
}
