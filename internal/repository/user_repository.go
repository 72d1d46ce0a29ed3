package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/coursework/internal/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// UserRepository implements user persistence using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID.UUID(), u.Name, u.Email.String(), string(u.Role), u.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	query := `
		SELECT id, name, email, role, created_at
		FROM users WHERE id = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, id.UUID()))
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := `
		SELECT id, name, email, role, created_at
		FROM users WHERE email = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, email.String()))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id          uuid.UUID
		name, email string
		role        string
		createdAt   time.Time
	)
	err := row.Scan(&id, &name, &email, &role, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	addr, err := domain.NewEmail(email)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        domain.NewUserID(id),
		Name:      name,
		Email:     addr,
		Role:      domain.Role(role),
		CreatedAt: createdAt,
	}, nil
}
