package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticket-service/internal/api/dto"
	"github.com/spec-kit/event-ticket-service/internal/auth"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/service"
	apperrors "github.com/spec-kit/event-ticket-service/pkg/util"
)

// TicketsHandler manages ticket issuance, listing and pass endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// IssueTicket POST /events/:id/tickets.
func (h *TicketsHandler) IssueTicket(c *fiber.Ctx) error {
	var req dto.IssueTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.HolderName == "" || req.HolderPhone == "" {
		return apperrors.NewValidationError("holder_name and holder_phone required", nil)
	}

	ticket, err := h.service.IssueTicket(c.Context(), c.Params("id"), service.IssueTicketInput{
		HolderName:     req.HolderName,
		HolderPhone:    req.HolderPhone,
		HolderDocument: req.HolderDocument,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListEventTickets GET /events/:id/tickets.
func (h *TicketsHandler) ListEventTickets(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	tickets, err := h.service.ListEventTickets(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetPass GET /tickets/:id/pass. Public: this is the holder's pass page data,
// reached through the shared link.
func (h *TicketsHandler) GetPass(c *fiber.Ctx) error {
	pass, err := h.service.GetPass(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketPassResponse{
		Ticket: ticketResponse(pass.Ticket),
		Event:  eventResponse(pass.Event),
		Token:  pass.Token,
		URL:    pass.URL,
	}})
}

// ShareLink GET /tickets/:id/share.
func (h *TicketsHandler) ShareLink(c *fiber.Ctx) error {
	link, err := h.service.ShareLink(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ShareLinkResponse{URL: link}})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Operator == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	if err := h.service.DeleteTicket(c.Context(), principal.Operator.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		EventID:         ticket.EventID,
		HolderName:      ticket.HolderName,
		HolderPhone:     ticket.HolderPhone,
		HolderDocument:  ticket.HolderDocument,
		ValidationState: ticket.ValidationState,
		ValidatedBy:     ticket.ValidatedBy,
		ValidatedAt:     ticket.ValidatedAt,
		CreatedAt:       ticket.CreatedAt,
	}
}
