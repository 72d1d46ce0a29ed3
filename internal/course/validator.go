package course

import (
	"context"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// AcceptanceValidator decides whether a course can take a new task before
// the task itself is built. It reports one failure at a time, in the order
// course existence, course state, statement uniqueness, position fit.
type AcceptanceValidator struct {
	courses Repository
}

// NewAcceptanceValidator creates a validator that looks courses up in courses.
func NewAcceptanceValidator(courses Repository) *AcceptanceValidator {
	return &AcceptanceValidator{courses: courses}
}

// Validate returns nil when the course accepts a task with this statement at
// position. A missing course yields domain.ErrCourseNotFound, a rejected task
// a *domain.ValidationError.
func (v *AcceptanceValidator) Validate(ctx context.Context, id domain.CourseID, statement string, position int) error {
	c, err := v.courses.Get(ctx, id)
	if err != nil {
		return err
	}
	if verr := c.CheckTaskAcceptance(statement, position); verr != nil {
		return verr
	}
	return nil
}
