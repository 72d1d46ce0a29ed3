package handlers

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// InstructorHandler serves instructor reports
type InstructorHandler struct {
	service *course.Service
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(service *course.Service) *InstructorHandler {
	return &InstructorHandler{service: service}
}

// ReportItemResponse is one course row of an instructor report
type ReportItemResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	TotalTasks  int        `json:"totalTasks"`
	Categories  []string   `json:"categories"`
}

// ReportResponse is the body of GET /api/v1/instructors/{id}/courses
type ReportResponse struct {
	Courses               []ReportItemResponse `json:"courses"`
	TotalPublishedCourses int                  `json:"totalPublishedCourses"`
}

func toReportResponse(report *course.InstructorReport) ReportResponse {
	items := make([]ReportItemResponse, 0, len(report.Courses))
	for _, item := range report.Courses {
		categories := make([]string, 0, len(item.Categories))
		for _, c := range item.Categories {
			categories = append(categories, c.String())
		}
		items = append(items, ReportItemResponse{
			ID:          item.CourseID.String(),
			Title:       item.Title,
			Status:      item.Status.String(),
			PublishedAt: item.PublishedAt,
			TotalTasks:  item.TaskCount,
			Categories:  categories,
		})
	}
	return ReportResponse{Courses: items, TotalPublishedCourses: report.TotalPublished}
}

// Courses returns the course report of an instructor
func (h *InstructorHandler) Courses(w http.ResponseWriter, r *http.Request) {
	id, err := domain.NewUserIDFromString(r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, domain.ErrUserNotFound)
		return
	}

	report, err := h.service.InstructorReport(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toReportResponse(report))
}
