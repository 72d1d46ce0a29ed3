package domain

import (
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Lookup Errors
// These are returned by repositories and services and are not tied to a
// single validation rule.
// -----------------------------------------------------------------------------

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNotInstructor     = errors.New("user is not an instructor")
)

// Course errors
var (
	ErrCourseNotFound = errors.New("course not found")
)

// -----------------------------------------------------------------------------
// Validation Errors
// -----------------------------------------------------------------------------

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	// KindStructural covers field-level problems detectable without course state.
	KindStructural ErrorKind = "structural"
	// KindOptionSet covers answer-option problems detectable from the option list.
	KindOptionSet ErrorKind = "option_set"
	// KindCourseState means the course is not in a state that allows the operation.
	KindCourseState ErrorKind = "course_state"
	// KindUniqueness means a statement is already used in the course.
	KindUniqueness ErrorKind = "uniqueness"
	// KindSequence covers position bounds, gaps, continuity and category coverage.
	KindSequence ErrorKind = "sequence"
)

// Structural
var (
	ErrRequiredField     = errors.New("field is required")
	ErrMissingCourse     = errors.New("course is required")
	ErrBlankStatement    = errors.New("statement cannot be blank")
	ErrStatementLength   = errors.New("statement has an invalid length")
	ErrInvalidPosition   = errors.New("position must be at least 1")
	ErrUnknownCategory   = errors.New("unknown task category")
	ErrOptionCount       = errors.New("invalid number of options")
	ErrOptionLength      = errors.New("option has an invalid length")
	ErrForeignTask       = errors.New("task belongs to another course")
	ErrBlankTitle        = errors.New("title cannot be blank")
	ErrMissingInstructor = errors.New("instructor is required")
)

// Option set
var (
	ErrOptionMatchesStatement = errors.New("option text equals the task statement")
	ErrDuplicateOption        = errors.New("duplicate option text")
	ErrCorrectOptionCount     = errors.New("wrong number of correct options")
)

// Course state
var (
	ErrCourseNotBuilding = errors.New("course is not in BUILDING status")
)

// Uniqueness
var (
	ErrDuplicateStatement = errors.New("course already has a task with this statement")
)

// Sequence
var (
	ErrPositionOutOfBounds   = errors.New("position is higher than the task count allows")
	ErrPositionGap           = errors.New("position leaves a gap in the task sequence")
	ErrSequenceNotContinuous = errors.New("task sequence is not continuous")
	ErrMissingCategory       = errors.New("course is missing a task category")
)

// ValidationError is a single reportable failure with the input field it
// concerns. It unwraps to one of the sentinel errors above.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newValidationError builds a ValidationError whose message defaults to the
// sentinel's text.
func newValidationError(kind ErrorKind, field string, sentinel error, format string, args ...any) *ValidationError {
	msg := sentinel.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &ValidationError{Kind: kind, Field: field, Message: msg, Err: sentinel}
}

// NewFieldError reports a structural problem with a request field outside
// the aggregate rules, such as an unparseable email.
func NewFieldError(field string, sentinel error, message string) *ValidationError {
	if message == "" {
		message = sentinel.Error()
	}
	return &ValidationError{Kind: KindStructural, Field: field, Message: message, Err: sentinel}
}

// ValidationErrors groups simultaneous structural failures.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes every grouped error to errors.Is and errors.As.
func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		out = append(out, e)
	}
	return out
}

// orNil returns nil for an empty list so callers can return it directly.
func (errs ValidationErrors) orNil() error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errs
	}
}

// AsValidationErrors flattens err into its validation failures. It returns
// nil when err carries none.
func AsValidationErrors(err error) []*ValidationError {
	var list ValidationErrors
	if errors.As(err, &list) {
		return list
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return []*ValidationError{single}
	}
	return nil
}

// KindOf returns the kind of the first validation failure in err, or "" when
// err is not a validation failure.
func KindOf(err error) ErrorKind {
	if list := AsValidationErrors(err); len(list) > 0 {
		return list[0].Kind
	}
	return ""
}

// -----------------------------------------------------------------------------
// Invariant Violations
// -----------------------------------------------------------------------------

// InvariantViolation is raised with panic when the aggregate is found in a
// state its own API cannot produce. It signals a defect, not bad input.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s: %s", v.Invariant, v.Detail)
}

func violate(invariant, format string, args ...any) {
	panic(InvariantViolation{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}
