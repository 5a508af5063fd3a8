package dto

import (
	"time"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
)

// UserResponse is the account shape handed to clients. Credentials and
// storage-origin flags never leave the gateway.
type UserResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Telephone  string    `json:"telephone,omitempty"`
	Department string    `json:"department,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromUser maps a domain account to its response shape.
func FromUser(user domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Telephone:  user.Telephone,
		Department: user.Department,
		Role:       string(user.Role),
		CreatedAt:  user.CreatedAt,
	}
}

// FromUsers maps a slice of accounts.
func FromUsers(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, FromUser(user))
	}
	return out
}

// CreateTechnicianRequest payload for admin-created technician accounts.
type CreateTechnicianRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Telephone string `json:"telephone"`
}

// UpdateUserRequest payload for admin edits. Role accepts admin,
// technician or user.
type UpdateUserRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Telephone  string  `json:"telephone"`
	Department string  `json:"department"`
	Role       *string `json:"role"`
}
