package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicflow/civicflow/internal/auth"
	"github.com/civicflow/civicflow/internal/domain"
	"github.com/civicflow/civicflow/internal/repository"
	apperrors "github.com/civicflow/civicflow/pkg/util"
)

// UserService covers profile access and admin account management.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ProfileUpdateInput carries optional profile fields; nil leaves a
// field untouched.
type ProfileUpdateInput struct {
	FullName    *string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
}

// Get returns the account for the given id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile applies the provided profile fields to the caller's
// own account.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input ProfileUpdateInput) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if input.FullName != nil {
		user.FullName = input.FullName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Address != nil {
		user.Address = input.Address
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}

	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// List returns all accounts. Admin only.
func (s *UserService) List(ctx context.Context, principal auth.Principal) ([]domain.User, error) {
	if !auth.CanAdminister(principal) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ChangeRole sets a user's role. Admin only.
func (s *UserService) ChangeRole(ctx context.Context, principal auth.Principal, id string, role domain.Role) error {
	if !auth.CanAdminister(principal) {
		return apperrors.NewForbidden("admin role required")
	}
	if !domain.ValidRole(role) {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Delete removes an account. Admin only.
func (s *UserService) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if !auth.CanAdminister(principal) {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}
