package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
	"github.com/felixgeelhaar/coursework/internal/storage/sqlite"
)

// setupTestServer creates an MCP server over a throwaway SQLite store
func setupTestServer(t *testing.T) (*Server, *domain.User) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "mcp.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	service := course.NewService(sqlite.NewStore(db), nil)
	instructor, err := service.RegisterUser(context.Background(), course.RegisterUserRequest{
		Name:  "Paulo",
		Email: "paulo@alura.com.br",
		Role:  "INSTRUCTOR",
	})
	if err != nil {
		t.Fatalf("register instructor: %v", err)
	}

	return NewServer(Config{Service: service, Version: "test"}), instructor
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t)

	if server.mcpServer == nil {
		t.Fatal("expected non-nil MCP server")
	}
	if server.GetMCPServer() == nil {
		t.Fatal("expected non-nil underlying MCP server")
	}
}

func TestServerConfig(t *testing.T) {
	// Nil service must not panic at construction
	if NewServer(Config{}) == nil {
		t.Fatal("expected non-nil server even with empty config")
	}
}

func TestAuthoringFlow(t *testing.T) {
	server, instructor := setupTestServer(t)
	ctx := context.Background()

	created, err := server.handleCourseCreate(ctx, CourseCreateInput{
		Title:           "Java",
		Description:     "Intro to Java",
		InstructorEmail: "paulo@alura.com.br",
	})
	if err != nil {
		t.Fatalf("course_create error = %v", err)
	}
	if created.Status != "BUILDING" || len(created.Tasks) != 0 {
		t.Errorf("course_create = %+v", created)
	}

	tasks := []TaskAddInput{
		{CourseID: created.CourseID, Type: "OPEN_TEXT", Statement: "What is the JVM?", Order: 1},
		{CourseID: created.CourseID, Type: "single_choice", Statement: "Which language is this?", Order: 2, Options: []OptionInput{
			{Option: "Java", IsCorrect: true},
			{Option: "Python"},
		}},
		{CourseID: created.CourseID, Type: "multiplechoice", Statement: "Which run on the JVM?", Order: 1, Options: []OptionInput{
			{Option: "Java", IsCorrect: true},
			{Option: "Kotlin", IsCorrect: true},
			{Option: "Ruby"},
		}},
	}
	for _, in := range tasks {
		if _, err := server.handleTaskAdd(ctx, in); err != nil {
			t.Fatalf("task_add(%q) error = %v", in.Statement, err)
		}
	}

	got, err := server.handleCourseGet(ctx, CourseRefInput{CourseID: created.CourseID})
	if err != nil {
		t.Fatalf("course_get error = %v", err)
	}
	wantOrder := []string{"Which run on the JVM?", "What is the JVM?", "Which language is this?"}
	for i, task := range got.Tasks {
		if task.Statement != wantOrder[i] || task.Order != i+1 {
			t.Errorf("tasks[%d] = %q at %d, want %q at %d", i, task.Statement, task.Order, wantOrder[i], i+1)
		}
	}

	published, err := server.handleCoursePublish(ctx, CourseRefInput{CourseID: created.CourseID})
	if err != nil {
		t.Fatalf("course_publish error = %v", err)
	}
	if published.Status != "PUBLISHED" || published.PublishedAt == "" {
		t.Errorf("course_publish = %+v", published)
	}

	report, err := server.handleCourseReport(ctx, ReportInput{InstructorID: instructor.ID.String()})
	if err != nil {
		t.Fatalf("course_report error = %v", err)
	}
	if report.TotalPublishedCourses != 1 || len(report.Courses) != 1 || report.Courses[0].TotalTasks != 3 {
		t.Errorf("course_report = %+v", report)
	}
}

func TestTaskAdd_Errors(t *testing.T) {
	server, _ := setupTestServer(t)
	ctx := context.Background()

	created, err := server.handleCourseCreate(ctx, CourseCreateInput{
		Title:           "Go",
		InstructorEmail: "paulo@alura.com.br",
	})
	if err != nil {
		t.Fatalf("course_create error = %v", err)
	}

	t.Run("invalid course id", func(t *testing.T) {
		_, err := server.handleTaskAdd(ctx, TaskAddInput{CourseID: "nope", Type: "OPEN_TEXT", Statement: "What is Go?", Order: 1})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := server.handleTaskAdd(ctx, TaskAddInput{CourseID: created.CourseID, Type: "ESSAY", Statement: "What is Go?", Order: 1})
		if !errors.Is(err, domain.ErrUnknownCategory) {
			t.Fatalf("error = %v, want ErrUnknownCategory", err)
		}
	})

	t.Run("gap in order", func(t *testing.T) {
		_, err := server.handleTaskAdd(ctx, TaskAddInput{CourseID: created.CourseID, Type: "OPEN_TEXT", Statement: "What is Go?", Order: 3})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "order:") {
			t.Errorf("error %q should name the order field", err)
		}
		if domain.KindOf(err) != domain.KindSequence {
			t.Errorf("kind = %q, want sequence", domain.KindOf(err))
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := server.handleCourseGet(ctx, CourseRefInput{CourseID: domain.GenerateCourseID().String()})
		if !errors.Is(err, domain.ErrCourseNotFound) {
			t.Fatalf("error = %v, want ErrCourseNotFound", err)
		}
	})
}
