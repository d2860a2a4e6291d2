package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticket-service/internal/api/dto"
	"github.com/spec-kit/event-ticket-service/internal/auth"
	"github.com/spec-kit/event-ticket-service/internal/codec"
	"github.com/spec-kit/event-ticket-service/internal/service"
	apperrors "github.com/spec-kit/event-ticket-service/pkg/util"
)

// ValidatorHandler exposes the validator-station scan cycle: capture a token,
// preview it, and confirm the admission decision.
type ValidatorHandler struct {
	sessions *service.ScanSessionService
}

// NewValidatorHandler constructs handler.
func NewValidatorHandler(sessions *service.ScanSessionService) *ValidatorHandler {
	return &ValidatorHandler{sessions: sessions}
}

// Scan POST /validator/scan.
func (h *ValidatorHandler) Scan(c *fiber.Ctx) error {
	var req dto.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StationID == "" || req.Raw == "" {
		return apperrors.NewValidationError("station_id and raw required", nil)
	}

	preview, err := h.sessions.Capture(c.UserContext(), req.StationID, req.Raw)
	if err != nil {
		return mapScanError(err)
	}

	resp := dto.ScanPreviewResponse{
		TokenID:        preview.Token.ID,
		EventID:        preview.Token.EventID,
		HolderName:     preview.Token.HolderName,
		HolderPhone:    preview.Token.HolderPhone,
		HolderDocument: preview.Token.HolderDocument,
		Found:          preview.Found,
	}
	if preview.Ticket != nil {
		ticket := ticketResponse(preview.Ticket)
		resp.Ticket = &ticket
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Confirm POST /validator/confirm. The operator's explicit decision point:
// only this call mutates validation state.
func (h *ValidatorHandler) Confirm(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Operator == nil {
		return apperrors.NewUnauthorized("operator required")
	}

	var req dto.ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StationID == "" {
		return apperrors.NewValidationError("station_id required", nil)
	}

	result, err := h.sessions.Confirm(c.UserContext(), req.StationID, principal.Operator.ID)
	if err != nil {
		return mapScanError(err)
	}

	if result.Outcome == service.OutcomeNotFound {
		return apperrors.NewNotFound("ticket", nil)
	}

	resp := dto.ValidationResponse{Outcome: string(result.Outcome)}
	if result.Ticket != nil {
		ticket := ticketResponse(result.Ticket)
		resp.Ticket = &ticket
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Reset POST /validator/reset.
func (h *ValidatorHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StationID == "" {
		return apperrors.NewValidationError("station_id required", nil)
	}
	if err := h.sessions.Reset(c.UserContext(), req.StationID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func mapScanError(err error) error {
	switch {
	case errors.Is(err, codec.ErrMalformed):
		return apperrors.NewMalformedToken("scanned text is not a valid ticket token")
	case errors.Is(err, service.ErrStoreUnavailable):
		return apperrors.NewStoreUnavailable(err)
	case errors.Is(err, service.ErrScanInProgress):
		return apperrors.NewConflict("confirmation in progress for this station", nil)
	case errors.Is(err, service.ErrNoCapturedToken):
		return apperrors.NewConflict("no captured token for this station", nil)
	default:
		return err
	}
}
