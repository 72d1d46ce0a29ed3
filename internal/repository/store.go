package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/coursework/internal/course"
)

// Ensure PostgreSQL repositories implement the storage interfaces
var (
	_ course.Repository     = (*CourseRepository)(nil)
	_ course.UserRepository = (*UserRepository)(nil)
	_ course.ReportSource   = (*ReportRepository)(nil)
)

// NewStore bundles the PostgreSQL repositories for the course service.
// Writes go through the pgx pool and reports through database/sql.
func NewStore(pool *pgxpool.Pool, db *sql.DB) course.Store {
	return course.Store{
		Courses: NewCourseRepository(pool),
		Users:   NewUserRepository(pool),
		Reports: NewReportRepository(db),
	}
}
