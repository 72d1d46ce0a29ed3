package sqlite

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// ReportStore answers instructor report queries from SQLite.
type ReportStore struct {
	db *DB
}

// NewReportStore creates a new SQLite-backed report store.
func NewReportStore(db *DB) *ReportStore {
	return &ReportStore{db: db}
}

// InstructorCourses returns one row per course of the instructor, in
// creation order, with task counts and the categories present.
func (s *ReportStore) InstructorCourses(ctx context.Context, instructorID domain.UserID) ([]course.ReportItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, instructor_id, status, created_at, published_at
		FROM courses WHERE instructor_id = ? ORDER BY rowid`, instructorID.String())
	if err != nil {
		return nil, fmt.Errorf("query instructor courses: %w", err)
	}
	defer rows.Close()

	var items []course.ReportItem
	index := make(map[domain.CourseID]int)
	for rows.Next() {
		snap, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		index[snap.ID] = len(items)
		items = append(items, course.ReportItem{
			CourseID:    snap.ID,
			Title:       snap.Title,
			Status:      snap.Status,
			PublishedAt: snap.PublishedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	counts, err := s.db.QueryContext(ctx, `
		SELECT t.course_id, t.category, COUNT(*)
		FROM tasks t JOIN courses c ON c.id = t.course_id
		WHERE c.instructor_id = ?
		GROUP BY t.course_id, t.category`, instructorID.String())
	if err != nil {
		return nil, fmt.Errorf("query task counts: %w", err)
	}
	defer counts.Close()

	present := make(map[domain.CourseID]map[domain.Category]bool)
	for counts.Next() {
		var (
			courseID, category string
			n                  int
		)
		if err := counts.Scan(&courseID, &category, &n); err != nil {
			return nil, fmt.Errorf("scan task count: %w", err)
		}
		id, err := domain.NewCourseIDFromString(courseID)
		if err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		items[i].TaskCount += n
		if present[id] == nil {
			present[id] = make(map[domain.Category]bool)
		}
		present[id][domain.Category(category)] = true
	}
	if err := counts.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		for _, c := range domain.Categories() {
			if present[items[i].CourseID][c] {
				items[i].Categories = append(items[i].Categories, c)
			}
		}
	}
	return items, nil
}
