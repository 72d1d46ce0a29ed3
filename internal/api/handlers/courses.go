package handlers

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// CourseHandler handles course endpoints
type CourseHandler struct {
	service *course.Service
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(service *course.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

// NewCourseRequest is the body of POST /api/v1/courses
type NewCourseRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	EmailInstructor string `json:"emailInstructor"`
}

// CourseSummary represents a course in list responses
type CourseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	TaskCount   int    `json:"taskCount"`
}

// CourseDetail represents a course with its tasks
type CourseDetail struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	InstructorID string         `json:"instructorId"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	PublishedAt  *time.Time     `json:"publishedAt"`
	Tasks        []TaskResponse `json:"tasks"`
}

// PublishResponse is returned after a successful publish
type PublishResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
}

func toCourseSummary(c *domain.Course) CourseSummary {
	return CourseSummary{
		ID:          c.ID.String(),
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status().String(),
		TaskCount:   c.TaskCount(),
	}
}

func toCourseDetail(c *domain.Course) CourseDetail {
	tasks := c.Tasks()
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return CourseDetail{
		ID:           c.ID.String(),
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: c.InstructorID.String(),
		Status:       c.Status().String(),
		CreatedAt:    c.CreatedAt,
		PublishedAt:  c.PublishedAt(),
		Tasks:        out,
	}
}

// Create opens a new course for an instructor
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NewCourseRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}

	c, err := h.service.CreateCourse(r.Context(), course.CreateCourseRequest{
		Title:           req.Title,
		Description:     req.Description,
		InstructorEmail: req.EmailInstructor,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toCourseDetail(c))
}

// List returns every course
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	response := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		response = append(response, toCourseSummary(c))
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"courses": response,
		"total":   len(response),
	})
}

// Get returns one course with its tasks
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toCourseDetail(c))
}

// Publish moves a course to PUBLISHED
func (h *CourseHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.service.PublishCourse(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, PublishResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Status:      c.Status().String(),
		PublishedAt: c.PublishedAt(),
	})
}

// courseIDParam parses the {id} path value; an unparseable ID cannot name
// a course, so it is answered with 404
func courseIDParam(w http.ResponseWriter, r *http.Request) (domain.CourseID, bool) {
	id, err := domain.NewCourseIDFromString(r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, domain.ErrCourseNotFound)
		return domain.CourseID{}, false
	}
	return id, true
}
