package dto

import (
	"time"

	"github.com/civicflow/civicflow/internal/domain"
)

// UpdateProfileRequest payload; absent fields are untouched.
type UpdateProfileRequest struct {
	FullName    *string    `json:"fullName"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

// ChangeRoleRequest payload for admin role changes.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}

// ProfileView is the caller's own account projection.
type ProfileView struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	FullName    *string     `json:"fullName,omitempty"`
	Phone       *string     `json:"phone,omitempty"`
	Address     *string     `json:"address,omitempty"`
	DateOfBirth *time.Time  `json:"dateOfBirth,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
}

// NewProfileView projects a full profile.
func NewProfileView(user *domain.User) ProfileView {
	return ProfileView{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		FullName:    user.FullName,
		Phone:       user.Phone,
		Address:     user.Address,
		DateOfBirth: user.DateOfBirth,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
