package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewCourse(t *testing.T) {
	t.Run("starts building and empty", func(t *testing.T) {
		c := buildingCourse(t)
		if !c.IsBuilding() || c.IsPublished() {
			t.Errorf("Status() = %s, want BUILDING", c.Status())
		}
		if c.PublishedAt() != nil {
			t.Error("PublishedAt() should be nil while building")
		}
		if c.TaskCount() != 0 {
			t.Errorf("TaskCount() = %d, want 0", c.TaskCount())
		}
	})

	t.Run("requires an instructor", func(t *testing.T) {
		student := NewUser("Caio", mustEmail(t, "caio@example.com"), RoleStudent)
		_, err := NewCourse("Go basics", "", student)
		if !errors.Is(err, ErrNotInstructor) {
			t.Fatalf("NewCourse() error = %v, want ErrNotInstructor", err)
		}
		if list := AsValidationErrors(err); len(list) != 1 || list[0].Field != "emailInstructor" {
			t.Errorf("errors = %v, want emailInstructor", err)
		}
	})

	t.Run("reports blank title and missing instructor together", func(t *testing.T) {
		_, err := NewCourse("  ", "", nil)
		if !errors.Is(err, ErrBlankTitle) || !errors.Is(err, ErrMissingInstructor) {
			t.Errorf("NewCourse() error = %v, want ErrBlankTitle and ErrMissingInstructor", err)
		}
	})
}

func TestCourse_CheckTaskAcceptance(t *testing.T) {
	t.Run("accepts valid placement", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		if !c.CanAcceptTask("Explain channels", 2) {
			t.Error("CanAcceptTask() = false, want true")
		}
		if !c.CanAcceptTask("Explain channels", 1) {
			t.Error("occupied position should be accepted and shifted")
		}
	})

	t.Run("published course", func(t *testing.T) {
		c := publishableCourse(t)
		if err := c.Publish(); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		verr := c.CheckTaskAcceptance("Explain interfaces", 1)
		if verr == nil || verr.Kind != KindCourseState || verr.Field != "courseId" {
			t.Fatalf("CheckTaskAcceptance() = %v, want course state on courseId", verr)
		}
	})

	t.Run("duplicate statement regardless of position", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		for _, position := range []int{1, 2, 9} {
			verr := c.CheckTaskAcceptance("Explain interfaces", position)
			if verr == nil || verr.Kind != KindUniqueness || !errors.Is(verr, ErrDuplicateStatement) {
				t.Errorf("position %d: CheckTaskAcceptance() = %v, want uniqueness", position, verr)
			}
		}
	})

	t.Run("statement uniqueness is case-sensitive", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		if verr := c.CheckTaskAcceptance("EXPLAIN INTERFACES", 2); verr != nil {
			t.Errorf("CheckTaskAcceptance() = %v, want nil", verr)
		}
	})

	t.Run("invalid order", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		verr := c.CheckTaskAcceptance("Explain channels", 3)
		if verr == nil || verr.Kind != KindSequence || verr.Field != "order" {
			t.Fatalf("CheckTaskAcceptance() = %v, want sequence on order", verr)
		}
		if verr.Message != "Order placement is invalid" {
			t.Errorf("Message = %q", verr.Message)
		}
	})

	t.Run("state is checked before uniqueness and order", func(t *testing.T) {
		c := publishableCourse(t)
		_ = c.Publish()
		verr := c.CheckTaskAcceptance("Explain interfaces", 99)
		if verr == nil || verr.Kind != KindCourseState {
			t.Errorf("CheckTaskAcceptance() = %v, want course state first", verr)
		}
	})
}

func TestCourse_AddTask(t *testing.T) {
	t.Run("rejects task from another course", func(t *testing.T) {
		c := buildingCourse(t)
		foreign := mustTask(t, GenerateCourseID(), openText("Explain interfaces", 1))
		if err := c.AddTask(foreign); !errors.Is(err, ErrForeignTask) {
			t.Errorf("AddTask() error = %v, want ErrForeignTask", err)
		}
	})

	t.Run("rechecks uniqueness", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		dup := mustTask(t, c.ID, openText("Explain interfaces", 2))
		if err := c.AddTask(dup); KindOf(err) != KindUniqueness {
			t.Errorf("AddTask() error = %v, want uniqueness", err)
		}
		if c.TaskCount() != 1 {
			t.Errorf("TaskCount() = %d, want 1", c.TaskCount())
		}
	})

	t.Run("rechecks building state", func(t *testing.T) {
		c := publishableCourse(t)
		_ = c.Publish()
		task := mustTask(t, c.ID, openText("One more task", 4))
		if err := c.AddTask(task); !errors.Is(err, ErrCourseNotBuilding) {
			t.Errorf("AddTask() error = %v, want ErrCourseNotBuilding", err)
		}
	})
}

func TestCourse_Publish(t *testing.T) {
	t.Run("empty course is missing categories", func(t *testing.T) {
		c := buildingCourse(t)
		if err := c.Publish(); !errors.Is(err, ErrMissingCategory) {
			t.Errorf("Publish() error = %v, want ErrMissingCategory", err)
		}
	})

	t.Run("non-continuous restored course", func(t *testing.T) {
		c := RestoreCourse(CourseSnapshot{
			ID:     GenerateCourseID(),
			Title:  "Restored",
			Status: StatusBuilding,
			Tasks: []*Task{
				seqTask(CourseID{}, "one", 1, CategoryOpenText),
				seqTask(CourseID{}, "two", 2, CategorySingleChoice),
				seqTask(CourseID{}, "four", 4, CategoryMultipleChoice),
			},
		})
		err := c.Publish()
		if !errors.Is(err, ErrSequenceNotContinuous) {
			t.Fatalf("Publish() error = %v, want ErrSequenceNotContinuous", err)
		}
		if !c.IsBuilding() {
			t.Error("failed publish should leave the course BUILDING")
		}
	})

	t.Run("second publish fails and changes nothing", func(t *testing.T) {
		c := publishableCourse(t)
		if err := c.Publish(); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		stamp := *c.PublishedAt()
		positions := positionsOf(c.Tasks())

		time.Sleep(time.Millisecond)
		err := c.Publish()
		if KindOf(err) != KindCourseState {
			t.Fatalf("second Publish() error = %v, want course state", err)
		}
		if !c.PublishedAt().Equal(stamp) {
			t.Errorf("PublishedAt changed from %v to %v", stamp, *c.PublishedAt())
		}
		if got := positionsOf(c.Tasks()); !reflect.DeepEqual(got, positions) {
			t.Errorf("positions changed from %v to %v", positions, got)
		}
	})
}

func TestCourse_Projections(t *testing.T) {
	c := buildingCourse(t)
	mustAdd(t, c, singleChoice("Which runs concurrently?", 1))
	mustAdd(t, c, openText("Explain interfaces", 1))

	if c.TaskCount() != 2 {
		t.Errorf("TaskCount() = %d, want 2", c.TaskCount())
	}
	want := []Category{CategoryOpenText, CategorySingleChoice}
	if got := c.Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if c.Status() != StatusBuilding {
		t.Errorf("Status() = %s, want BUILDING", c.Status())
	}
}

func TestCourseScenarios(t *testing.T) {
	t.Run("single choice into empty course", func(t *testing.T) {
		c := buildingCourse(t)
		in := TaskInput{
			Category:  CategorySingleChoice,
			Statement: "Pick the right one",
			Position:  1,
			Options: []TaskOption{
				{Text: "A", Correct: true},
				{Text: "B", Correct: false},
				{Text: "C", Correct: false},
			},
		}
		if !c.CanAcceptTask(in.Statement, in.Position) {
			t.Fatal("CanAcceptTask() = false")
		}
		task := mustAdd(t, c, in)
		if c.TaskCount() != 1 || task.Position() != 1 {
			t.Errorf("TaskCount() = %d, Position() = %d; want 1, 1", c.TaskCount(), task.Position())
		}
	})

	t.Run("open text at occupied position shifts the existing task", func(t *testing.T) {
		c := buildingCourse(t)
		first := mustAdd(t, c, singleChoice("Which runs concurrently?", 1))
		second := mustAdd(t, c, openText("Explain interfaces", 1))

		if second.Position() != 1 || first.Position() != 2 {
			t.Errorf("positions = new %d, former %d; want 1, 2", second.Position(), first.Position())
		}
	})

	t.Run("gap of four is rejected", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))

		if c.CanAcceptTask("Explain channels", 5) {
			t.Error("CanAcceptTask() = true for position 5")
		}
		task := mustTask(t, c.ID, openText("Explain channels", 5))
		if err := c.AddTask(task); KindOf(err) != KindSequence {
			t.Errorf("AddTask() error = %v, want sequence", err)
		}
		if c.TaskCount() != 1 {
			t.Errorf("TaskCount() = %d, want 1", c.TaskCount())
		}
	})

	t.Run("all categories publish", func(t *testing.T) {
		c := publishableCourse(t)
		if err := c.Publish(); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if !c.IsPublished() || c.PublishedAt() == nil {
			t.Errorf("Status() = %s, PublishedAt() = %v", c.Status(), c.PublishedAt())
		}
	})

	t.Run("missing category blocks publish", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		mustAdd(t, c, singleChoice("Which runs concurrently?", 2))
		mustAdd(t, c, openText("Explain channels", 3))

		err := c.Publish()
		if !errors.Is(err, ErrMissingCategory) {
			t.Fatalf("Publish() error = %v, want ErrMissingCategory", err)
		}
		if !c.IsBuilding() || c.PublishedAt() != nil {
			t.Error("course should remain BUILDING without a publication time")
		}
	})

	t.Run("duplicate statement", func(t *testing.T) {
		c := buildingCourse(t)
		mustAdd(t, c, openText("Explain interfaces", 1))
		verr := c.CheckTaskAcceptance("Explain interfaces", 2)
		if verr == nil || verr.Kind != KindUniqueness {
			t.Errorf("CheckTaskAcceptance() = %v, want uniqueness", verr)
		}
	})

	t.Run("two correct single choice fails before the course", func(t *testing.T) {
		c := buildingCourse(t)
		_, err := NewTask(c.ID, TaskInput{
			Category:  CategorySingleChoice,
			Statement: "Pick the right one",
			Position:  1,
			Options:   []TaskOption{{Text: "A", Correct: true}, {Text: "B", Correct: true}},
		})
		if KindOf(err) != KindOptionSet {
			t.Fatalf("NewTask() error = %v, want option set", err)
		}
		if c.TaskCount() != 0 || len(c.RecordedEvents()) != 1 {
			t.Error("course should be untouched by a rejected task")
		}
	})
}
