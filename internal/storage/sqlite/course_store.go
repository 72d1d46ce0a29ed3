package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CourseStore implements course persistence backed by SQLite.
type CourseStore struct {
	db *DB
}

// NewCourseStore creates a new SQLite-backed course store.
func NewCourseStore(db *DB) *CourseStore {
	return &CourseStore{db: db}
}

// Create inserts a new course with its tasks.
func (s *CourseStore) Create(ctx context.Context, c *domain.Course) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO courses (id, title, description, instructor_id, status, created_at, published_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID.String(), c.Title, c.Description, c.InstructorID.String(),
			string(c.Status()), c.CreatedAt, nullTime(c.PublishedAt()),
		)
		if err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
		return saveTasks(ctx, tx, c)
	})
}

// Get retrieves a course and its tasks by ID.
func (s *CourseStore) Get(ctx context.Context, id domain.CourseID) (*domain.Course, error) {
	return loadCourse(ctx, s.db, id)
}

// List returns all courses in creation order.
func (s *CourseStore) List(ctx context.Context) ([]*domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, instructor_id, status, created_at, published_at
		FROM courses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.CourseSnapshot
	for rows.Next() {
		snap, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks, err := loadTasks(ctx, s.db, "", nil)
	if err != nil {
		return nil, err
	}

	courses := make([]*domain.Course, 0, len(snapshots))
	for _, snap := range snapshots {
		snap.Tasks = tasks[snap.ID]
		courses = append(courses, domain.RestoreCourse(snap))
	}
	return courses, nil
}

// Update loads the course, applies fn and saves it in one transaction.
func (s *CourseStore) Update(ctx context.Context, id domain.CourseID, fn func(*domain.Course) error) (*domain.Course, error) {
	var course *domain.Course
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		c, err := loadCourse(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE courses SET title = ?, description = ?, status = ?, published_at = ?
			WHERE id = ?`,
			c.Title, c.Description, string(c.Status()), nullTime(c.PublishedAt()), c.ID.String(),
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

// saveTasks upserts every task; positions move during a shift.
func saveTasks(ctx context.Context, q queryer, c *domain.Course) error {
	for _, t := range c.Tasks() {
		options, err := json.Marshal(t.Options())
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO tasks (id, course_id, category, statement, position, options, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET position = excluded.position`,
			t.ID().String(), c.ID.String(), string(t.Category()), t.Statement(),
			t.Position(), string(options), t.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("upsert task: %w", err)
		}
	}
	return nil
}

func loadCourse(ctx context.Context, q queryer, id domain.CourseID) (*domain.Course, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, title, description, instructor_id, status, created_at, published_at
		FROM courses WHERE id = ?`, id.String())
	snap, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	tasks, err := loadTasks(ctx, q, "WHERE course_id = ?", []any{id.String()})
	if err != nil {
		return nil, err
	}
	snap.Tasks = tasks[snap.ID]
	return domain.RestoreCourse(snap), nil
}

// loadTasks returns tasks grouped by course, ordered by position.
func loadTasks(ctx context.Context, q queryer, where string, args []any) (map[domain.CourseID][]*domain.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, course_id, category, statement, position, options, created_at
		FROM tasks `+where+` ORDER BY course_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.CourseID][]*domain.Task)
	for rows.Next() {
		var (
			id, courseID, category, statement, options string
			position                                   int
			createdAt                                  time.Time
		)
		if err := rows.Scan(&id, &courseID, &category, &statement, &position, &options, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		taskID, err := domain.NewTaskIDFromString(id)
		if err != nil {
			return nil, err
		}
		cid, err := domain.NewCourseIDFromString(courseID)
		if err != nil {
			return nil, err
		}
		var opts []domain.TaskOption
		if err := json.Unmarshal([]byte(options), &opts); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		if len(opts) == 0 {
			opts = nil
		}

		out[cid] = append(out[cid], domain.RestoreTask(taskID, cid, domain.Category(category), statement, position, opts, createdAt))
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCourse(row scanner) (domain.CourseSnapshot, error) {
	var (
		id, title, description, instructorID, status string
		createdAt                                    time.Time
		publishedAt                                  sql.NullTime
	)
	if err := row.Scan(&id, &title, &description, &instructorID, &status, &createdAt, &publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CourseSnapshot{}, err
		}
		return domain.CourseSnapshot{}, fmt.Errorf("scan course: %w", err)
	}

	courseID, err := domain.NewCourseIDFromString(id)
	if err != nil {
		return domain.CourseSnapshot{}, err
	}
	instructor, err := domain.NewUserIDFromString(instructorID)
	if err != nil {
		return domain.CourseSnapshot{}, err
	}

	snap := domain.CourseSnapshot{
		ID:           courseID,
		Title:        title,
		Description:  description,
		InstructorID: instructor,
		Status:       domain.Status(status),
		CreatedAt:    createdAt,
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		snap.PublishedAt = &t
	}
	return snap, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
