// Package repository provides the PostgreSQL persistence for courses and
// users. The write side uses pgx; migrations and the report read model go
// through database/sql with lib/pq.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// -----------------------------------------------------------------------------
// Task Mappers
// -----------------------------------------------------------------------------

// taskRow mirrors a tasks table row
type taskRow struct {
	ID        uuid.UUID
	CourseID  uuid.UUID
	Category  string
	Statement string
	Position  int
	Options   []byte
	CreatedAt time.Time
}

// mapTaskToDomain converts a task row to a domain Task
func mapTaskToDomain(r taskRow) (*domain.Task, error) {
	var options []domain.TaskOption
	if len(r.Options) > 0 {
		if err := json.Unmarshal(r.Options, &options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	if len(options) == 0 {
		options = nil
	}
	return domain.RestoreTask(
		domain.NewTaskID(r.ID),
		domain.NewCourseID(r.CourseID),
		domain.Category(r.Category),
		r.Statement,
		r.Position,
		options,
		r.CreatedAt,
	), nil
}

// mapOptionsToStorage encodes task options for the JSONB column
func mapOptionsToStorage(t *domain.Task) ([]byte, error) {
	options := t.Options()
	if options == nil {
		options = []domain.TaskOption{}
	}
	return json.Marshal(options)
}

// -----------------------------------------------------------------------------
// Course Mappers
// -----------------------------------------------------------------------------

// courseRow mirrors a courses table row
type courseRow struct {
	ID           uuid.UUID
	Title        string
	Description  string
	InstructorID uuid.UUID
	Status       string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// mapCourseToDomain converts a course row and its tasks to a domain Course
func mapCourseToDomain(r courseRow, tasks []*domain.Task) *domain.Course {
	return domain.RestoreCourse(domain.CourseSnapshot{
		ID:           domain.NewCourseID(r.ID),
		Title:        r.Title,
		Description:  r.Description,
		InstructorID: domain.NewUserID(r.InstructorID),
		Status:       domain.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		PublishedAt:  r.PublishedAt,
		Tasks:        tasks,
	})
}

// -----------------------------------------------------------------------------
// Report Mappers
// -----------------------------------------------------------------------------

// mapCategories decodes a json_agg of category names into canonical order.
// A NULL aggregate means the course has no tasks.
func mapCategories(raw pqtype.NullRawMessage) ([]domain.Category, error) {
	if !raw.Valid || len(raw.RawMessage) == 0 {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(raw.RawMessage, &names); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	present := make(map[domain.Category]bool, len(names))
	for _, n := range names {
		present[domain.Category(n)] = true
	}
	var out []domain.Category
	for _, c := range domain.Categories() {
		if present[c] {
			out = append(out, c)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Null Helpers
// -----------------------------------------------------------------------------

func nullTimeToPtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
