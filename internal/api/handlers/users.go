package handlers

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/coursework/internal/course"
	"github.com/felixgeelhaar/coursework/internal/domain"
)

// UserHandler handles user registration
type UserHandler struct {
	service *course.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *course.Service) *UserHandler {
	return &UserHandler{service: service}
}

// NewUserRequest is the body of POST /api/v1/users
type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email.String(),
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Create registers a user
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}

	user, err := h.service.RegisterUser(r.Context(), course.RegisterUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toUserResponse(user))
}
