package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-api/internal/api/dto"
	"github.com/spec-kit/school-api/internal/service"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, req.UserType)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.LoginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			User: dto.UserSummary{
				ID:      result.Principal.ID,
				Email:   result.Principal.Email,
				Name:    result.Principal.Name,
				Surname: result.Principal.Surname,
				Type:    result.Principal.Role,
			},
		},
	})
}
