package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticket-service/internal/api/dto"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/service"
	apperrors "github.com/spec-kit/event-ticket-service/pkg/util"
)

// EventsHandler manages event CRUD endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Place == "" || req.Date.IsZero() {
		return apperrors.NewValidationError("name, date, place required", nil)
	}

	event, err := h.service.CreateEvent(c.Context(), service.EventInput{
		Name:  req.Name,
		Date:  req.Date,
		Place: req.Place,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	events, err := h.service.ListEvents(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventResponse(&events[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.service.GetEvent(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// UpdateEvent PUT /events/:id.
func (h *EventsHandler) UpdateEvent(c *fiber.Ctx) error {
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	event, err := h.service.UpdateEvent(c.Context(), c.Params("id"), service.EventInput{
		Name:  req.Name,
		Date:  req.Date,
		Place: req.Place,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// DeleteEvent DELETE /events/:id.
func (h *EventsHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.service.DeleteEvent(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:        event.ID,
		Name:      event.Name,
		Date:      event.Date,
		Place:     event.Place,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
