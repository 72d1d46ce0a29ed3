// Package mcp exposes the course authoring workflows as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// Server wraps the MCP server with the course service
type Server struct {
	mcpServer *server.Server
	service   *course.Service
}

// Config contains configuration for the MCP server
type Config struct {
	Service *course.Service
	Version string
}

// NewServer creates a new MCP server for course authoring
func NewServer(cfg Config) *Server {
	s := &Server{service: cfg.Service}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "coursework",
		Version: version,
	}, server.WithInstructions(`
Coursework authors courses made of ordered tasks.

Available tools:
- course_create: Open a course in BUILDING status for an instructor
- task_add: Add an OPEN_TEXT, SINGLE_CHOICE or MULTIPLE_CHOICE task at an order
- course_get: Show a course and its tasks
- course_publish: Publish a course
- course_report: Summarize an instructor's courses

Rules:
- Orders run 1..N with no gaps; adding at an occupied order shifts later tasks
- Publishing needs a continuous sequence and one task of each type
- Published courses take no new tasks
`))

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("course_create").
		Description("Create a course for an instructor, identified by email.").
		Handler(s.handleCourseCreate)

	s.mcpServer.Tool("task_add").
		Description("Add a task to a course in BUILDING status.").
		Handler(s.handleTaskAdd)

	s.mcpServer.Tool("course_get").
		Description("Get a course with its tasks in order.").
		Handler(s.handleCourseGet)

	s.mcpServer.Tool("course_publish").
		Description("Publish a course once every task type is present.").
		Handler(s.handleCoursePublish)

	s.mcpServer.Tool("course_report").
		Description("Report an instructor's courses and published count.").
		Handler(s.handleCourseReport)
}

// Input/Output types for tools

type CourseCreateInput struct {
	Title           string `json:"title" jsonschema:"description=Course title"`
	Description     string `json:"description,omitempty" jsonschema:"description=Course description"`
	InstructorEmail string `json:"instructor_email" jsonschema:"description=Email of a registered instructor"`
}

type CourseOutput struct {
	CourseID    string       `json:"course_id"`
	Title       string       `json:"title"`
	Status      string       `json:"status"`
	PublishedAt string       `json:"published_at,omitempty"`
	Tasks       []TaskOutput `json:"tasks"`
}

type OptionInput struct {
	Option    string `json:"option" jsonschema:"description=Option text"`
	IsCorrect bool   `json:"is_correct" jsonschema:"description=Whether this option is a right answer"`
}

type TaskAddInput struct {
	CourseID  string        `json:"course_id" jsonschema:"description=Course ID from course_create"`
	Type      string        `json:"type" jsonschema:"description=Task type,enum=OPEN_TEXT,enum=SINGLE_CHOICE,enum=MULTIPLE_CHOICE"`
	Statement string        `json:"statement" jsonschema:"description=Task statement, unique within the course"`
	Order     int           `json:"order" jsonschema:"description=1-based position in the course"`
	Options   []OptionInput `json:"options,omitempty" jsonschema:"description=Answer options for choice tasks"`
}

type TaskOutput struct {
	TaskID    string        `json:"task_id"`
	Type      string        `json:"type"`
	Statement string        `json:"statement"`
	Order     int           `json:"order"`
	Options   []OptionInput `json:"options,omitempty"`
}

type CourseRefInput struct {
	CourseID string `json:"course_id" jsonschema:"description=Course ID"`
}

type ReportInput struct {
	InstructorID string `json:"instructor_id" jsonschema:"description=Instructor user ID"`
}

type ReportCourseOutput struct {
	CourseID   string   `json:"course_id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	TotalTasks int      `json:"total_tasks"`
	Categories []string `json:"categories"`
}

type ReportOutput struct {
	Courses               []ReportCourseOutput `json:"courses"`
	TotalPublishedCourses int                  `json:"total_published_courses"`
}

// Tool handlers

func (s *Server) handleCourseCreate(ctx context.Context, input CourseCreateInput) (CourseOutput, error) {
	c, err := s.service.CreateCourse(ctx, course.CreateCourseRequest{
		Title:           input.Title,
		Description:     input.Description,
		InstructorEmail: input.InstructorEmail,
	})
	if err != nil {
		return CourseOutput{}, toolError("create course", err)
	}
	return toCourseOutput(c), nil
}

func (s *Server) handleTaskAdd(ctx context.Context, input TaskAddInput) (TaskOutput, error) {
	courseID, err := domain.NewCourseIDFromString(input.CourseID)
	if err != nil {
		return TaskOutput{}, fmt.Errorf("invalid course_id %q", input.CourseID)
	}
	category, err := domain.ParseCategory(input.Type)
	if err != nil {
		return TaskOutput{}, err
	}

	var options []domain.TaskOption
	for _, o := range input.Options {
		options = append(options, domain.TaskOption{Text: o.Option, Correct: o.IsCorrect})
	}

	task, err := s.service.AddTask(ctx, course.AddTaskRequest{
		CourseID:  courseID,
		Category:  category,
		Statement: input.Statement,
		Position:  input.Order,
		Options:   options,
	})
	if err != nil {
		return TaskOutput{}, toolError("add task", err)
	}
	return toTaskOutput(task), nil
}

func (s *Server) handleCourseGet(ctx context.Context, input CourseRefInput) (CourseOutput, error) {
	courseID, err := domain.NewCourseIDFromString(input.CourseID)
	if err != nil {
		return CourseOutput{}, fmt.Errorf("invalid course_id %q", input.CourseID)
	}
	c, err := s.service.GetCourse(ctx, courseID)
	if err != nil {
		return CourseOutput{}, toolError("get course", err)
	}
	return toCourseOutput(c), nil
}

func (s *Server) handleCoursePublish(ctx context.Context, input CourseRefInput) (CourseOutput, error) {
	courseID, err := domain.NewCourseIDFromString(input.CourseID)
	if err != nil {
		return CourseOutput{}, fmt.Errorf("invalid course_id %q", input.CourseID)
	}
	c, err := s.service.PublishCourse(ctx, courseID)
	if err != nil {
		return CourseOutput{}, toolError("publish course", err)
	}
	return toCourseOutput(c), nil
}

func (s *Server) handleCourseReport(ctx context.Context, input ReportInput) (ReportOutput, error) {
	instructorID, err := domain.NewUserIDFromString(input.InstructorID)
	if err != nil {
		return ReportOutput{}, fmt.Errorf("invalid instructor_id %q", input.InstructorID)
	}
	report, err := s.service.InstructorReport(ctx, instructorID)
	if err != nil {
		return ReportOutput{}, toolError("course report", err)
	}

	out := ReportOutput{
		Courses:               make([]ReportCourseOutput, 0, len(report.Courses)),
		TotalPublishedCourses: report.TotalPublished,
	}
	for _, item := range report.Courses {
		categories := make([]string, 0, len(item.Categories))
		for _, c := range item.Categories {
			categories = append(categories, c.String())
		}
		out.Courses = append(out.Courses, ReportCourseOutput{
			CourseID:   item.CourseID.String(),
			Title:      item.Title,
			Status:     item.Status.String(),
			TotalTasks: item.TaskCount,
			Categories: categories,
		})
	}
	return out, nil
}

// toolError flattens validation failures into one readable message
func toolError(action string, err error) error {
	list := domain.AsValidationErrors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", action, err)
	}
	parts := make([]string, 0, len(list))
	for _, v := range list {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Errorf("%s: %s: %w", action, strings.Join(parts, "; "), err)
}

func toCourseOutput(c *domain.Course) CourseOutput {
	out := CourseOutput{
		CourseID: c.ID.String(),
		Title:    c.Title,
		Status:   c.Status().String(),
		Tasks:    make([]TaskOutput, 0, c.TaskCount()),
	}
	if at := c.PublishedAt(); at != nil {
		out.PublishedAt = at.Format(time.RFC3339)
	}
	for _, t := range c.Tasks() {
		out.Tasks = append(out.Tasks, toTaskOutput(t))
	}
	return out
}

func toTaskOutput(t *domain.Task) TaskOutput {
	out := TaskOutput{
		TaskID:    t.ID().String(),
		Type:      t.Category().String(),
		Statement: t.Statement(),
		Order:     t.Position(),
	}
	for _, o := range t.Options() {
		out.Options = append(out.Options, OptionInput{Option: o.Text, IsCorrect: o.Correct})
	}
	return out
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
