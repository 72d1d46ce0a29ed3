package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// seedSchemaFixture writes one instructor and two courses with raw SQL so the
// schema constraints are exercised without the stores in between.
func seedSchemaFixture(t *testing.T, db *DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO users (id, name, email, role, created_at) VALUES ('u1', 'Paula', 'paula@example.com', 'INSTRUCTOR', CURRENT_TIMESTAMP)`,
		`INSERT INTO courses (id, title, instructor_id, created_at) VALUES ('c1', 'Go basics', 'u1', CURRENT_TIMESTAMP)`,
		`INSERT INTO courses (id, title, instructor_id, created_at) VALUES ('c2', 'Go advanced', 'u1', CURRENT_TIMESTAMP)`,
		`INSERT INTO tasks (id, course_id, category, statement, position, created_at) VALUES ('t1', 'c1', 'OPEN_TEXT', 'Explain interfaces', 1, CURRENT_TIMESTAMP)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func TestMigrate_CourseSchema(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	version, err := db.Version()
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Version() = %d, want 1", version)
	}

	objects := []struct{ kind, name string }{
		{"table", "users"},
		{"table", "courses"},
		{"table", "tasks"},
		{"index", "idx_courses_instructor"},
		{"index", "idx_tasks_course_position"},
	}
	for _, obj := range objects {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = ? AND name = ?", obj.kind, obj.name).Scan(&name)
		if err != nil {
			t.Errorf("%s %q not found: %v", obj.kind, obj.name, err)
		}
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestSchema_Constraints(t *testing.T) {
	tests := []struct {
		name    string
		stmt    string
		wantErr bool
	}{
		{
			name:    "position zero",
			stmt:    `INSERT INTO tasks (id, course_id, category, statement, position, created_at) VALUES ('t2', 'c1', 'OPEN_TEXT', 'Explain slices', 0, CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name:    "duplicate statement in same course",
			stmt:    `INSERT INTO tasks (id, course_id, category, statement, position, created_at) VALUES ('t2', 'c1', 'OPEN_TEXT', 'Explain interfaces', 2, CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name: "same statement in another course",
			stmt: `INSERT INTO tasks (id, course_id, category, statement, position, created_at) VALUES ('t2', 'c2', 'OPEN_TEXT', 'Explain interfaces', 1, CURRENT_TIMESTAMP)`,
		},
		{
			name:    "task for missing course",
			stmt:    `INSERT INTO tasks (id, course_id, category, statement, position, created_at) VALUES ('t2', 'nope', 'OPEN_TEXT', 'Explain slices', 1, CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name:    "unknown category",
			stmt:    `INSERT INTO tasks (id, course_id, category, statement, position, created_at) VALUES ('t2', 'c1', 'ESSAY', 'Explain slices', 2, CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name:    "unknown course status",
			stmt:    `INSERT INTO courses (id, title, instructor_id, status, created_at) VALUES ('c3', 'Rust', 'u1', 'ARCHIVED', CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name:    "course for missing instructor",
			stmt:    `INSERT INTO courses (id, title, instructor_id, created_at) VALUES ('c3', 'Rust', 'nobody', CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name:    "unknown role",
			stmt:    `INSERT INTO users (id, name, email, role, created_at) VALUES ('u2', 'Ana', 'ana@example.com', 'ADMIN', CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
		{
			name:    "duplicate email",
			stmt:    `INSERT INTO users (id, name, email, role, created_at) VALUES ('u2', 'Ana', 'paula@example.com', 'STUDENT', CURRENT_TIMESTAMP)`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			seedSchemaFixture(t, db)

			_, err := db.ExecContext(context.Background(), tt.stmt)
			if (err != nil) != tt.wantErr {
				t.Errorf("Exec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_TaskDefaults(t *testing.T) {
	db := openTestDB(t)
	seedSchemaFixture(t, db)

	var options, status string
	if err := db.QueryRow("SELECT options FROM tasks WHERE id = 't1'").Scan(&options); err != nil {
		t.Fatalf("query options: %v", err)
	}
	if options != "[]" {
		t.Errorf("options = %q, want []", options)
	}
	if err := db.QueryRow("SELECT status FROM courses WHERE id = 'c1'").Scan(&status); err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status != "BUILDING" {
		t.Errorf("status = %q, want BUILDING", status)
	}
}

func TestSchema_DeleteCourseCascadesTasks(t *testing.T) {
	db := openTestDB(t)
	seedSchemaFixture(t, db)

	if _, err := db.ExecContext(context.Background(), "DELETE FROM courses WHERE id = 'c1'"); err != nil {
		t.Fatalf("delete course: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks WHERE course_id = 'c1'").Scan(&n); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if n != 0 {
		t.Errorf("tasks left after delete = %d, want 0", n)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"001_initial.sql", 1, false},
		{"012_task_feedback.sql", 12, false},
		{"initial.sql", 0, true},
	}
	for _, tt := range tests {
		got, err := parseVersion(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVersion(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVersion(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// openTestDB opens and migrates a database in a temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "courses.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
