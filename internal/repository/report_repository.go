package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// ReportRepository answers instructor report queries through database/sql.
// Categories arrive as a JSON aggregate decoded via pqtype.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const instructorCoursesQuery = `
	SELECT c.id, c.title, c.status, c.published_at,
	       COUNT(t.id) AS task_count,
	       json_agg(DISTINCT t.category) FILTER (WHERE t.id IS NOT NULL) AS categories
	FROM courses c
	LEFT JOIN tasks t ON t.course_id = c.id
	WHERE c.instructor_id = $1
	GROUP BY c.id
	ORDER BY c.created_at, c.id
`

// InstructorCourses returns one row per course of the instructor, in
// creation order, with task counts and the categories present.
func (r *ReportRepository) InstructorCourses(ctx context.Context, instructorID domain.UserID) ([]course.ReportItem, error) {
	rows, err := r.db.QueryContext(ctx, instructorCoursesQuery, instructorID.UUID())
	if err != nil {
		return nil, fmt.Errorf("query instructor courses: %w", err)
	}
	defer rows.Close()

	items := []course.ReportItem{}
	for rows.Next() {
		var (
			id          uuid.UUID
			title       string
			status      string
			publishedAt sql.NullTime
			taskCount   int
			categories  pqtype.NullRawMessage
		)
		if err := rows.Scan(&id, &title, &status, &publishedAt, &taskCount, &categories); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		cats, err := mapCategories(categories)
		if err != nil {
			return nil, err
		}
		items = append(items, course.ReportItem{
			CourseID:    domain.NewCourseID(id),
			Title:       title,
			Status:      domain.Status(status),
			PublishedAt: nullTimeToPtr(publishedAt),
			TaskCount:   taskCount,
			Categories:  cats,
		})
	}
	return items, rows.Err()
}
