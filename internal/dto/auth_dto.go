package dto

import "github.com/smartcia/assessment-api/internal/models"

// LoginRequest authenticates against the static credential allow-list.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse serializes a user record.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// LoginResponse returns the authenticated user and a bearer token.
type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// NewUserResponse converts a user record.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Role:  string(user.Role),
		Email: user.Email,
	}
}
