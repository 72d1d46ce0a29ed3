package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/coursework/internal/domain"
	"github.com/mattn/go-sqlite3"
)

// UserStore implements user persistence backed by SQLite.
type UserStore struct {
	db *DB
}

// NewUserStore creates a new SQLite-backed user store.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user. A taken email yields domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email.String(), string(u.Role), u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, created_at FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

// GetByEmail retrieves a user by normalized email.
func (s *UserStore) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, created_at FROM users WHERE email = ?`, email.String())
	return scanUser(row)
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		id, name, email, role string
		createdAt             time.Time
	)
	if err := row.Scan(&id, &name, &email, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	userID, err := domain.NewUserIDFromString(id)
	if err != nil {
		return nil, err
	}
	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        userID,
		Name:      name,
		Email:     addr,
		Role:      domain.Role(role),
		CreatedAt: createdAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
