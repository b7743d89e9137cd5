package dto

import (
	"time"

	"github.com/civicflow/civicflow/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest carries just an email address.
type EmailRequest struct {
	Email string `json:"email"`
}

// VerifyEmailRequest payload for code verification.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest payload for token redemption.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UserView is the public projection of an account.
type UserView struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// NewUserView projects a user.
func NewUserView(user *domain.User) UserView {
	return UserView{ID: user.ID, Email: user.Email, Role: user.Role}
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Message   string    `json:"message,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}
