package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the access role of a user.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
)

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleInstructor:
		return RoleInstructor, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents a registered user
type User struct {
	ID        UserID
	Name      string
	Email     Email
	Role      Role
	CreatedAt time.Time
}

// NewUser creates a user with a fresh ID
func NewUser(name string, email Email, role Role) *User {
	return &User{
		ID:        GenerateUserID(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

// IsInstructor reports whether the user may author courses
func (u *User) IsInstructor() bool {
	return u != nil && u.Role == RoleInstructor
}
