package domain

import (
	"sort"
)

// MaxPositionGap is the largest allowed distance between adjacent positions.
const MaxPositionGap = 1

// Sequence holds the tasks of one course ordered by position. It keeps the
// positions a continuous 1..N run: inserting at an occupied position shifts
// that task and everything after it one step forward.
//
// A Sequence is not safe for concurrent use.
type Sequence struct {
	tasks []*Task // ascending by position
}

// NewSequence builds a sequence from tasks in any order. The input is not
// validated, so a sequence loaded from storage may be non-continuous; Insert
// refuses to operate on such a sequence.
func NewSequence(tasks []*Task) *Sequence {
	sorted := append([]*Task(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].position < sorted[j].position
	})
	return &Sequence{tasks: sorted}
}

// Len returns the number of tasks.
func (s *Sequence) Len() int {
	return len(s.tasks)
}

// MaxPosition returns the highest position, or 0 when empty.
func (s *Sequence) MaxPosition() int {
	if len(s.tasks) == 0 {
		return 0
	}
	return s.tasks[len(s.tasks)-1].position
}

// Tasks returns the tasks in position order. The slice is a copy; the tasks
// are not.
func (s *Sequence) Tasks() []*Task {
	return append([]*Task(nil), s.tasks...)
}

// FitsInSequence reports whether a new task may land at position: exactly 1
// for an empty sequence, otherwise anywhere in 1..max+1.
func (s *Sequence) FitsInSequence(position int) bool {
	if len(s.tasks) == 0 {
		return position == 1
	}
	return position >= 1 && position-s.MaxPosition() <= MaxPositionGap
}

// IsPositionWithinBounds reports whether position does not exceed len+1.
func (s *Sequence) IsPositionWithinBounds(position int) bool {
	return position <= len(s.tasks)+1
}

// HasContinuousSequence reports whether the positions form 1..N.
func (s *Sequence) HasContinuousSequence() bool {
	if len(s.tasks) == 0 {
		return true
	}
	if s.tasks[0].position != 1 {
		return false
	}
	for i := 1; i < len(s.tasks); i++ {
		if s.tasks[i].position-s.tasks[i-1].position != MaxPositionGap {
			return false
		}
	}
	return true
}

// HasAllCategories reports whether every category is represented.
func (s *Sequence) HasAllCategories() bool {
	present := s.categorySet()
	for _, c := range Categories() {
		if _, ok := present[c]; !ok {
			return false
		}
	}
	return true
}

// Categories returns the categories present, in canonical order.
func (s *Sequence) Categories() []Category {
	present := s.categorySet()
	var out []Category
	for _, c := range Categories() {
		if _, ok := present[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Sequence) categorySet() map[Category]struct{} {
	present := make(map[Category]struct{}, 3)
	for _, t := range s.tasks {
		present[t.category] = struct{}{}
	}
	return present
}

// HasTaskWithStatement is an exact, case-sensitive lookup.
func (s *Sequence) HasTaskWithStatement(statement string) bool {
	for _, t := range s.tasks {
		if t.MatchesStatement(statement) {
			return true
		}
	}
	return false
}

// Insert places task at its position, shifting occupants forward.
//
// Insert panics with InvariantViolation if the sequence is already
// non-continuous: no sequence of Insert calls can produce that state.
func (s *Sequence) Insert(task *Task) error {
	if !s.IsPositionWithinBounds(task.position) {
		return newValidationError(KindSequence, "order", ErrPositionOutOfBounds,
			"order %d is higher than %d", task.position, len(s.tasks)+1)
	}
	if !s.HasContinuousSequence() {
		violate("continuous sequence", "insert into non-continuous sequence of %d tasks (positions %v)",
			len(s.tasks), s.positions())
	}
	if !s.FitsInSequence(task.position) {
		return newValidationError(KindSequence, "order", ErrPositionGap,
			"order %d leaves a gap after %d", task.position, s.MaxPosition())
	}

	idx := s.search(task.position)

	rebuilt := make([]*Task, 0, len(s.tasks)+1)
	rebuilt = append(rebuilt, s.tasks[:idx]...)
	rebuilt = append(rebuilt, task)
	if idx < len(s.tasks) && s.tasks[idx].position == task.position {
		for _, t := range s.tasks[idx:] {
			t.shift()
		}
	}
	rebuilt = append(rebuilt, s.tasks[idx:]...)
	s.tasks = rebuilt

	return nil
}

// search returns the index of the first task at or above position.
func (s *Sequence) search(position int) int {
	return sort.Search(len(s.tasks), func(i int) bool {
		return s.tasks[i].position >= position
	})
}

func (s *Sequence) positions() []int {
	out := make([]int, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.position
	}
	return out
}
