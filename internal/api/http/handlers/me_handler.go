package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicflow/civicflow/internal/api/dto"
	"github.com/civicflow/civicflow/internal/auth"
	"github.com/civicflow/civicflow/internal/service"
	apperrors "github.com/civicflow/civicflow/pkg/util"
)

// MeHandler exposes the caller's own profile.
type MeHandler struct {
	users *service.UserService
}

// NewMeHandler constructs handler.
func NewMeHandler(userService *service.UserService) *MeHandler {
	return &MeHandler{users: userService}
}

// Get handles GET /me.
func (h *MeHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.users.Get(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileView(user))
}

// Update handles PUT /me.
func (h *MeHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.ProfileUpdateInput{
		FullName:    req.FullName,
		Phone:       req.Phone,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	}
	if err := h.users.UpdateProfile(c.UserContext(), principal.ID, input); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully"})
}
