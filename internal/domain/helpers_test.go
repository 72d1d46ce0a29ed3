package domain

import (
	"testing"
)

func mustEmail(t *testing.T, s string) Email {
	t.Helper()
	e, err := NewEmail(s)
	if err != nil {
		t.Fatalf("NewEmail(%q) error = %v", s, err)
	}
	return e
}

func testInstructor(t *testing.T) *User {
	t.Helper()
	return NewUser("Paula", mustEmail(t, "paula@example.com"), RoleInstructor)
}

func buildingCourse(t *testing.T) *Course {
	t.Helper()
	c, err := NewCourse("Go basics", "First steps", testInstructor(t))
	if err != nil {
		t.Fatalf("NewCourse() error = %v", err)
	}
	return c
}

func mustTask(t *testing.T, courseID CourseID, in TaskInput) *Task {
	t.Helper()
	task, err := NewTask(courseID, in)
	if err != nil {
		t.Fatalf("NewTask(%+v) error = %v", in, err)
	}
	return task
}

func mustAdd(t *testing.T, c *Course, in TaskInput) *Task {
	t.Helper()
	task := mustTask(t, c.ID, in)
	if err := c.AddTask(task); err != nil {
		t.Fatalf("AddTask(%q @%d) error = %v", in.Statement, in.Position, err)
	}
	return task
}

func openText(statement string, position int) TaskInput {
	return TaskInput{Category: CategoryOpenText, Statement: statement, Position: position}
}

func singleChoice(statement string, position int) TaskInput {
	return TaskInput{
		Category:  CategorySingleChoice,
		Statement: statement,
		Position:  position,
		Options: []TaskOption{
			{Text: "Goroutine", Correct: true},
			{Text: "Thread", Correct: false},
			{Text: "Process", Correct: false},
		},
	}
}

func multipleChoice(statement string, position int) TaskInput {
	return TaskInput{
		Category:  CategoryMultipleChoice,
		Statement: statement,
		Position:  position,
		Options: []TaskOption{
			{Text: "Slices", Correct: true},
			{Text: "Maps", Correct: true},
			{Text: "Classes", Correct: false},
		},
	}
}

// publishableCourse has one task of each category at positions 1..3.
func publishableCourse(t *testing.T) *Course {
	t.Helper()
	c := buildingCourse(t)
	mustAdd(t, c, openText("Explain interfaces", 1))
	mustAdd(t, c, singleChoice("Which runs concurrently?", 2))
	mustAdd(t, c, multipleChoice("Which are built-in types?", 3))
	return c
}

func positionsOf(tasks []*Task) []int {
	out := make([]int, len(tasks))
	for i, task := range tasks {
		out[i] = task.Position()
	}
	return out
}

func statementsOf(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Statement()
	}
	return out
}
