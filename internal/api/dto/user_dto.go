package dto

import (
	"time"

	"github.com/noryangjin/auction-server/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserStatusRequest payload for PATCH /admin/users/:id/status.
type UserStatusRequest struct {
	Status string `json:"status"`
}

// UserUpdateRequest payload for PATCH /users/me.
type UserUpdateRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

// PasswordChangeRequest payload for POST /users/me/password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	PhoneNumber string            `json:"phone_number"`
	Role        domain.UserRole   `json:"role"`
	Status      domain.UserStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewUserResponse converts an account for output.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID(),
		Email:       u.Email(),
		Name:        u.Name(),
		PhoneNumber: u.PhoneNumber(),
		Role:        u.Role(),
		Status:      u.Status(),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
	}
}
