package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// CourseRepository implements course persistence using PostgreSQL
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new PostgreSQL course repository
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create inserts a new course with its tasks
func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO courses (id, title, description, instructor_id, status, created_at, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.Exec(ctx, query,
			c.ID.UUID(), c.Title, c.Description, c.InstructorID.UUID(),
			string(c.Status()), c.CreatedAt, c.PublishedAt(),
		)
		if err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
		return saveTasks(ctx, tx, c)
	})
}

// Get retrieves a course and its tasks by ID
func (r *CourseRepository) Get(ctx context.Context, id domain.CourseID) (*domain.Course, error) {
	return loadCourse(ctx, r.pool, id, false)
}

// List returns all courses in creation order
func (r *CourseRepository) List(ctx context.Context) ([]*domain.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, status, created_at, published_at
		FROM courses ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courseRows, err := pgx.CollectRows(rows, scanCourseRow)
	if err != nil {
		return nil, fmt.Errorf("scan courses: %w", err)
	}

	tasks, err := loadTasks(ctx, r.pool, nil)
	if err != nil {
		return nil, err
	}

	courses := make([]*domain.Course, 0, len(courseRows))
	for _, cr := range courseRows {
		courses = append(courses, mapCourseToDomain(cr, tasks[domain.NewCourseID(cr.ID)]))
	}
	return courses, nil
}

// Update locks the course row, applies fn and saves the result in one
// transaction. Concurrent updates of the same course wait on the row lock.
func (r *CourseRepository) Update(ctx context.Context, id domain.CourseID, fn func(*domain.Course) error) (*domain.Course, error) {
	var course *domain.Course
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		c, err := loadCourse(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}

		query := `
			UPDATE courses SET title = $1, description = $2, status = $3, published_at = $4
			WHERE id = $5
		`
		_, err = tx.Exec(ctx, query,
			c.Title, c.Description, string(c.Status()), c.PublishedAt(), c.ID.UUID(),
		)
		if err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		if err := saveTasks(ctx, tx, c); err != nil {
			return err
		}
		course = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// saveTasks upserts every task in one batch; positions move during a shift.
func saveTasks(ctx context.Context, q dbtx, c *domain.Course) error {
	tasks := c.Tasks()
	if len(tasks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tasks {
		options, err := mapOptionsToStorage(t)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		batch.Queue(`
			INSERT INTO tasks (id, course_id, category, statement, position, options, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position
		`, t.ID().UUID(), c.ID.UUID(), string(t.Category()), t.Statement(),
			t.Position(), options, t.CreatedAt())
	}

	results := q.SendBatch(ctx, batch)
	for range tasks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert task: %w", err)
		}
	}
	return results.Close()
}

func loadCourse(ctx context.Context, q dbtx, id domain.CourseID, lock bool) (*domain.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, status, created_at, published_at
		FROM courses WHERE id = $1
	`
	if lock {
		query += " FOR UPDATE"
	}
	rows, err := q.Query(ctx, query, id.UUID())
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	cr, err := pgx.CollectExactlyOneRow(rows, scanCourseRow)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan course: %w", err)
	}

	tasks, err := loadTasks(ctx, q, &id)
	if err != nil {
		return nil, err
	}
	return mapCourseToDomain(cr, tasks[id]), nil
}

// loadTasks returns tasks grouped by course, ordered by position. A nil
// courseID loads every task.
func loadTasks(ctx context.Context, q dbtx, courseID *domain.CourseID) (map[domain.CourseID][]*domain.Task, error) {
	query := `
		SELECT id, course_id, category, statement, position, options, created_at
		FROM tasks
	`
	var args []any
	if courseID != nil {
		query += " WHERE course_id = $1"
		args = append(args, courseID.UUID())
	}
	query += " ORDER BY course_id, position"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	taskRows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (taskRow, error) {
		var r taskRow
		err := row.Scan(&r.ID, &r.CourseID, &r.Category, &r.Statement, &r.Position, &r.Options, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	out := make(map[domain.CourseID][]*domain.Task)
	for _, tr := range taskRows {
		t, err := mapTaskToDomain(tr)
		if err != nil {
			return nil, err
		}
		cid := t.CourseID()
		out[cid] = append(out[cid], t)
	}
	return out, nil
}

func scanCourseRow(row pgx.CollectableRow) (courseRow, error) {
	var r courseRow
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.InstructorID, &r.Status, &r.CreatedAt, &r.PublishedAt)
	return r, err
}
