package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticket-service/internal/api/dto"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/service"
	apperrors "github.com/spec-kit/event-ticket-service/pkg/util"
)

// AuthHandler manages operator authentication endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	operator, token, expiresAt, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Operator:  operatorSummary(operator),
	}})
}

// CreateOperator POST /auth/operators (admin only).
func (h *AuthHandler) CreateOperator(c *fiber.Ctx) error {
	var req dto.CreateOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	operator, err := h.service.CreateOperator(c.Context(), service.CreateOperatorInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": operatorSummary(operator)})
}

func operatorSummary(operator *domain.Operator) dto.OperatorSummary {
	return dto.OperatorSummary{
		ID:    operator.ID,
		Name:  operator.Name,
		Email: operator.Email,
		Role:  operator.Role,
	}
}
