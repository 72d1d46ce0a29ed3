package sqlite

import (
	"github.com/felixgeelhaar/coursework/internal/course"
)

// Ensure SQLite stores implement the storage interfaces.
var (
	_ course.Repository     = (*CourseStore)(nil)
	_ course.UserRepository = (*UserStore)(nil)
	_ course.ReportSource   = (*ReportStore)(nil)
)

// NewStore bundles the SQLite stores for the course service.
func NewStore(db *DB) course.Store {
	return course.Store{
		Courses: NewCourseStore(db),
		Users:   NewUserStore(db),
		Reports: NewReportStore(db),
	}
}
