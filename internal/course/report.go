package course

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// InstructorReport summarizes an instructor's courses.
type InstructorReport struct {
	InstructorID   domain.UserID
	Courses        []ReportItem
	TotalPublished int
}

// InstructorReport returns the course report for an instructor. The user
// must exist and hold the instructor role.
func (s *Service) InstructorReport(ctx context.Context, instructorID domain.UserID) (*InstructorReport, error) {
	user, err := s.users.Get(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if !user.IsInstructor() {
		return nil, domain.NewFieldError("user", domain.ErrNotInstructor, "User is not an instructor")
	}

	items, err := s.reports.InstructorCourses(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("load instructor courses: %w", err)
	}
	return BuildReport(instructorID, items), nil
}

// BuildReport counts published courses over items.
func BuildReport(instructorID domain.UserID, items []ReportItem) *InstructorReport {
	report := &InstructorReport{
		InstructorID: instructorID,
		Courses:      items,
	}
	if report.Courses == nil {
		report.Courses = []ReportItem{}
	}
	for _, item := range items {
		if item.Status == domain.StatusPublished {
			report.TotalPublished++
		}
	}
	return report
}

// ItemFromCourse projects a loaded course into a report row.
func ItemFromCourse(c *domain.Course) ReportItem {
	return ReportItem{
		CourseID:    c.ID,
		Title:       c.Title,
		Status:      c.Status(),
		PublishedAt: c.PublishedAt(),
		TaskCount:   c.TaskCount(),
		Categories:  c.Categories(),
	}
}
