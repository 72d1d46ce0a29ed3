package domain

import (
	"strings"
	"time"
)

// Status is the authoring state of a course.
type Status string

const (
	StatusBuilding  Status = "BUILDING"
	StatusPublished Status = "PUBLISHED"
)

func (s Status) String() string {
	return string(s)
}

// Course is the aggregate root for a course and its tasks. Tasks can only be
// added while BUILDING; publishing is one-way.
type Course struct {
	AggregateRoot

	ID           CourseID
	Title        string
	Description  string
	InstructorID UserID
	CreatedAt    time.Time

	status      Status
	publishedAt *time.Time
	tasks       *Sequence
}

// NewCourse creates a course in BUILDING status.
func NewCourse(title, description string, instructor *User) (*Course, error) {
	var errs ValidationErrors
	if strings.TrimSpace(title) == "" {
		errs = append(errs, newValidationError(KindStructural, "title", ErrBlankTitle, ""))
	}
	switch {
	case instructor == nil:
		errs = append(errs, newValidationError(KindStructural, "emailInstructor", ErrMissingInstructor, ""))
	case !instructor.IsInstructor():
		errs = append(errs, newValidationError(KindStructural, "emailInstructor", ErrNotInstructor, ""))
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	c := &Course{
		ID:           GenerateCourseID(),
		Title:        strings.TrimSpace(title),
		Description:  description,
		InstructorID: instructor.ID,
		CreatedAt:    time.Now(),
		status:       StatusBuilding,
		tasks:        NewSequence(nil),
	}
	c.RecordEvent(NewCourseCreatedEvent(c.ID, c.InstructorID, c.Title))
	return c, nil
}

// CourseSnapshot carries the persisted state of a course.
type CourseSnapshot struct {
	ID           CourseID
	Title        string
	Description  string
	InstructorID UserID
	Status       Status
	CreatedAt    time.Time
	PublishedAt  *time.Time
	Tasks        []*Task
}

// RestoreCourse rebuilds a course from storage without recording events.
func RestoreCourse(s CourseSnapshot) *Course {
	status := s.Status
	if status == "" {
		status = StatusBuilding
	}
	return &Course{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		InstructorID: s.InstructorID,
		CreatedAt:    s.CreatedAt,
		status:       status,
		publishedAt:  s.PublishedAt,
		tasks:        NewSequence(s.Tasks),
	}
}

// Status returns the current status.
func (c *Course) Status() Status { return c.status }

// PublishedAt returns the publication time, or nil while BUILDING.
func (c *Course) PublishedAt() *time.Time { return c.publishedAt }

func (c *Course) IsBuilding() bool  { return c.status == StatusBuilding }
func (c *Course) IsPublished() bool { return c.status == StatusPublished }

// Tasks returns the tasks in position order.
func (c *Course) Tasks() []*Task { return c.tasks.Tasks() }

// TaskCount returns the number of tasks.
func (c *Course) TaskCount() int { return c.tasks.Len() }

// Categories returns the task categories present in the course.
func (c *Course) Categories() []Category { return c.tasks.Categories() }

// HasTaskWithStatement is an exact, case-sensitive lookup.
func (c *Course) HasTaskWithStatement(statement string) bool {
	return c.tasks.HasTaskWithStatement(statement)
}

// HasContinuousSequence reports whether task positions form 1..N.
func (c *Course) HasContinuousSequence() bool { return c.tasks.HasContinuousSequence() }

// HasAllCategories reports whether every task category is present.
func (c *Course) HasAllCategories() bool { return c.tasks.HasAllCategories() }

// IsPositionPlacementValid reports whether a new task may land at position.
func (c *Course) IsPositionPlacementValid(position int) bool {
	return c.tasks.IsPositionWithinBounds(position) && c.tasks.FitsInSequence(position)
}

// CanAcceptTask reports whether a task with this statement may be added at
// position. CheckTaskAcceptance explains a false result.
func (c *Course) CanAcceptTask(statement string, position int) bool {
	return c.CheckTaskAcceptance(statement, position) == nil
}

// CheckTaskAcceptance returns the first failing rule, checked in the order
// course state, statement uniqueness, position fit.
func (c *Course) CheckTaskAcceptance(statement string, position int) *ValidationError {
	if !c.IsBuilding() {
		return newValidationError(KindCourseState, "courseId", ErrCourseNotBuilding,
			"Course can't have new tasks when not in BUILDING status")
	}
	if c.HasTaskWithStatement(statement) {
		return newValidationError(KindUniqueness, "statement", ErrDuplicateStatement,
			"Course can't have tasks with the same statement")
	}
	if !c.IsPositionPlacementValid(position) {
		return newValidationError(KindSequence, "order", ErrPositionGap,
			"Order placement is invalid")
	}
	return nil
}

// AddTask inserts a validated task. Callers are expected to have checked
// CanAcceptTask; the state and uniqueness rules are enforced again here.
func (c *Course) AddTask(task *Task) error {
	if task == nil {
		violate("task present", "nil task added to course %s", c.ID)
	}
	if !task.courseID.Equal(c.ID) {
		return newValidationError(KindStructural, "courseId", ErrForeignTask, "")
	}
	if !c.IsBuilding() {
		return newValidationError(KindCourseState, "courseId", ErrCourseNotBuilding,
			"Course can't receive more tasks when not in BUILDING status")
	}
	if c.HasTaskWithStatement(task.statement) {
		return newValidationError(KindUniqueness, "statement", ErrDuplicateStatement,
			"Course can't have multiple tasks with the same statement")
	}
	if err := c.tasks.Insert(task); err != nil {
		return err
	}

	c.RecordEvent(NewTaskAddedEvent(c.ID, task))
	return nil
}

// Publish moves the course from BUILDING to PUBLISHED. Each failed guard
// leaves the course untouched and returns its own error.
func (c *Course) Publish() error {
	if !c.IsBuilding() {
		return newValidationError(KindCourseState, "course", ErrCourseNotBuilding,
			"Course is not in BUILDING status")
	}
	if !c.HasContinuousSequence() {
		return newValidationError(KindSequence, "tasks", ErrSequenceNotContinuous,
			"Course task sequence is not continuous")
	}
	if !c.HasAllCategories() {
		return newValidationError(KindSequence, "tasks", ErrMissingCategory,
			"Course must have at least one activity of each type")
	}

	now := time.Now().UTC()
	c.status = StatusPublished
	c.publishedAt = &now

	c.RecordEvent(NewCoursePublishedEvent(c.ID, c.InstructorID, now, c.TaskCount()))
	return nil
}
