package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Statement bounds, in characters.
const (
	MinStatementLength = 4
	MaxStatementLength = 255
)

// Category is the closed set of task kinds.
type Category string

const (
	CategoryOpenText       Category = "OPEN_TEXT"
	CategorySingleChoice   Category = "SINGLE_CHOICE"
	CategoryMultipleChoice Category = "MULTIPLE_CHOICE"
)

// Categories returns every category in a stable order.
func Categories() []Category {
	return []Category{CategoryOpenText, CategorySingleChoice, CategoryMultipleChoice}
}

// ParseCategory accepts the canonical names plus the short path forms used by
// the HTTP routes ("opentext", "singlechoice", "multiplechoice").
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s))) {
	case "OPEN_TEXT", "OPENTEXT":
		return CategoryOpenText, nil
	case "SINGLE_CHOICE", "SINGLECHOICE":
		return CategorySingleChoice, nil
	case "MULTIPLE_CHOICE", "MULTIPLECHOICE":
		return CategoryMultipleChoice, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryOpenText, CategorySingleChoice, CategoryMultipleChoice:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// optionRules holds the per-category answer constraints.
type optionRules struct {
	minOptions   int
	maxOptions   int
	minCorrect   int
	maxCorrect   int // 0 means unbounded
	minIncorrect int
}

var rulesByCategory = map[Category]optionRules{
	CategoryOpenText:       {},
	CategorySingleChoice:   {minOptions: 2, maxOptions: 5, minCorrect: 1, maxCorrect: 1},
	CategoryMultipleChoice: {minOptions: 3, maxOptions: 5, minCorrect: 2, minIncorrect: 1},
}

// HasOptions reports whether tasks of this category carry answer options.
func (c Category) HasOptions() bool {
	return rulesByCategory[c].maxOptions > 0
}

// OptionBounds returns the allowed option count range for the category.
func (c Category) OptionBounds() (lo, hi int) {
	r := rulesByCategory[c]
	return r.minOptions, r.maxOptions
}

// TaskInput is an unvalidated candidate task.
type TaskInput struct {
	Category  Category
	Statement string
	Position  int
	Options   []TaskOption
}

// Task is one content unit of a course. Its position is owned by the
// course's Sequence and only ever moves forward during a shift.
type Task struct {
	id        TaskID
	courseID  CourseID
	statement string
	position  int
	category  Category
	options   []TaskOption
	createdAt time.Time
}

// NewTask validates a candidate task without touching the course. Structural
// problems are reported together; option-set problems stop at the first one,
// checked in the order statement collision, duplicates, correct counts.
func NewTask(courseID CourseID, in TaskInput) (*Task, error) {
	if err := validateStructure(courseID, in).orNil(); err != nil {
		return nil, err
	}
	if err := validateOptionSet(in); err != nil {
		return nil, err
	}

	var options []TaskOption
	if in.Category.HasOptions() {
		options = append([]TaskOption(nil), in.Options...)
	}

	return &Task{
		id:        GenerateTaskID(),
		courseID:  courseID,
		statement: in.Statement,
		position:  in.Position,
		category:  in.Category,
		options:   options,
		createdAt: time.Now(),
	}, nil
}

// ValidateTaskInput runs the structural checks a request must pass before it
// reaches a course, including the per-option text bounds. NewTask does not
// check option text length; the request boundary owns that rule.
func ValidateTaskInput(courseID CourseID, in TaskInput) error {
	errs := validateStructure(courseID, in)
	for i, o := range in.Options {
		if !o.validLength() {
			errs = append(errs, newValidationError(KindStructural, fmt.Sprintf("options[%d].option", i), ErrOptionLength,
				"option must be between %d and %d characters", MinOptionLength, MaxOptionLength))
		}
	}
	return errs.orNil()
}

func validateStructure(courseID CourseID, in TaskInput) ValidationErrors {
	var errs ValidationErrors

	if courseID.IsZero() {
		errs = append(errs, newValidationError(KindStructural, "courseId", ErrMissingCourse, ""))
	}
	if err := validateStatement(in.Statement); err != nil {
		errs = append(errs, err)
	}
	if in.Position < 1 {
		errs = append(errs, newValidationError(KindStructural, "order", ErrInvalidPosition, ""))
	}
	if !in.Category.Valid() {
		return append(errs, newValidationError(KindStructural, "type", ErrUnknownCategory,
			"unknown task category %q", string(in.Category)))
	}

	lo, hi := in.Category.OptionBounds()
	switch {
	case !in.Category.HasOptions() && len(in.Options) > 0:
		errs = append(errs, newValidationError(KindStructural, "options", ErrOptionCount,
			"%s tasks do not take options", in.Category))
	case in.Category.HasOptions() && (len(in.Options) < lo || len(in.Options) > hi):
		errs = append(errs, newValidationError(KindStructural, "options", ErrOptionCount,
			"options must have between %d and %d items", lo, hi))
	}
	return errs
}

func validateStatement(statement string) *ValidationError {
	if strings.TrimSpace(statement) == "" {
		return newValidationError(KindStructural, "statement", ErrBlankStatement, "")
	}
	n := utf8.RuneCountInString(statement)
	if n < MinStatementLength || n > MaxStatementLength {
		return newValidationError(KindStructural, "statement", ErrStatementLength,
			"statement must be between %d and %d characters", MinStatementLength, MaxStatementLength)
	}
	return nil
}

// validateOptionSet assumes the structural checks passed.
func validateOptionSet(in TaskInput) error {
	if !in.Category.HasOptions() {
		return nil
	}

	if ContainsStatement(in.Statement, in.Options) {
		return newValidationError(KindOptionSet, "options", ErrOptionMatchesStatement,
			"options cannot be equal to the task statement")
	}
	if HasDuplicateOptions(in.Options) {
		return newValidationError(KindOptionSet, "options", ErrDuplicateOption,
			"options must not repeat the same text")
	}

	r := rulesByCategory[in.Category]
	correct := CountCorrect(in.Options)
	incorrect := CountIncorrect(in.Options)

	switch {
	case r.maxCorrect > 0 && r.minCorrect == r.maxCorrect && correct != r.minCorrect:
		return newValidationError(KindOptionSet, "options", ErrCorrectOptionCount,
			"task must have exactly %d correct option", r.minCorrect)
	case correct < r.minCorrect || incorrect < r.minIncorrect:
		return newValidationError(KindOptionSet, "options", ErrCorrectOptionCount,
			"task must include at least %d correct option(s) and %d incorrect option(s)", r.minCorrect, r.minIncorrect)
	}
	return nil
}

// RestoreTask rebuilds a persisted task. It performs no validation; the
// owning course is responsible for the sequence it is loaded into.
func RestoreTask(id TaskID, courseID CourseID, category Category, statement string, position int, options []TaskOption, createdAt time.Time) *Task {
	return &Task{
		id:        id,
		courseID:  courseID,
		statement: statement,
		position:  position,
		category:  category,
		options:   append([]TaskOption(nil), options...),
		createdAt: createdAt,
	}
}

func (t *Task) ID() TaskID           { return t.id }
func (t *Task) CourseID() CourseID   { return t.courseID }
func (t *Task) Statement() string    { return t.statement }
func (t *Task) Position() int        { return t.position }
func (t *Task) Category() Category   { return t.category }
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// Options returns a copy of the answer options (nil for open text).
func (t *Task) Options() []TaskOption {
	if t.options == nil {
		return nil
	}
	return append([]TaskOption(nil), t.options...)
}

// MatchesStatement is an exact, case-sensitive comparison.
func (t *Task) MatchesStatement(statement string) bool {
	return t.statement == statement
}

// shift moves the task one position forward.
func (t *Task) shift() {
	t.position++
}
