package handlers

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// TaskHandler handles task creation, one endpoint per category
type TaskHandler struct {
	service *course.Service
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *course.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

// OptionPayload is one answer option in a task request
type OptionPayload struct {
	Option    string `json:"option"`
	IsCorrect bool   `json:"isCorrect"`
}

// NewTaskRequest is the body of the task creation endpoints. The open text
// endpoint rejects any options.
type NewTaskRequest struct {
	CourseID  string          `json:"courseId"`
	Statement string          `json:"statement"`
	Order     int             `json:"order"`
	Options   []OptionPayload `json:"options"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Statement string          `json:"statement"`
	Order     int             `json:"order"`
	Options   []OptionPayload `json:"options,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toTaskResponse(t *domain.Task) TaskResponse {
	var options []OptionPayload
	for _, o := range t.Options() {
		options = append(options, OptionPayload{Option: o.Text, IsCorrect: o.Correct})
	}
	return TaskResponse{
		ID:        t.ID().String(),
		Type:      t.Category().String(),
		Statement: t.Statement(),
		Order:     t.Position(),
		Options:   options,
		CreatedAt: t.CreatedAt(),
	}
}

// CreateOpenText adds an open text task
func (h *TaskHandler) CreateOpenText(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.CategoryOpenText)
}

// CreateSingleChoice adds a single choice task
func (h *TaskHandler) CreateSingleChoice(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.CategorySingleChoice)
}

// CreateMultipleChoice adds a multiple choice task
func (h *TaskHandler) CreateMultipleChoice(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.CategoryMultipleChoice)
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request, category domain.Category) {
	var req NewTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}

	// A missing courseId stays zero and is reported with the other field errors
	var courseID domain.CourseID
	if req.CourseID != "" {
		id, err := domain.NewCourseIDFromString(req.CourseID)
		if err != nil {
			WriteServiceError(w, r, domain.NewFieldError("courseId", domain.ErrMissingCourse, "courseId is not a valid course id"))
			return
		}
		courseID = id
	}

	var options []domain.TaskOption
	if req.Options != nil {
		options = make([]domain.TaskOption, 0, len(req.Options))
		for _, o := range req.Options {
			options = append(options, domain.TaskOption{Text: o.Option, Correct: o.IsCorrect})
		}
	}

	task, err := h.service.AddTask(r.Context(), course.AddTaskRequest{
		CourseID:  courseID,
		Category:  category,
		Statement: req.Statement,
		Position:  req.Order,
		Options:   options,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toTaskResponse(task))
}
