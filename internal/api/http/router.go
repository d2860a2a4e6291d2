package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/event-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/event-ticket-service/internal/auth"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	Tickets        *handlers.TicketsHandler
	Validator      *handlers.ValidatorHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	app.Post("/auth/login", cfg.Auth.Login)

	// The pass endpoint is public: ticket holders open it from the link
	// shared with them, without operator credentials.
	app.Get("/tickets/:id/pass", cfg.Tickets.GetPass)

	admin := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.OperatorRoleAdmin))
	admin.Post("/auth/operators", cfg.Auth.CreateOperator)

	admin.Post("/events", cfg.Events.CreateEvent)
	admin.Get("/events", cfg.Events.ListEvents)
	admin.Get("/events/:id", cfg.Events.GetEvent)
	admin.Put("/events/:id", cfg.Events.UpdateEvent)
	admin.Delete("/events/:id", cfg.Events.DeleteEvent)

	admin.Post("/events/:id/tickets", cfg.Tickets.IssueTicket)
	admin.Get("/events/:id/tickets", cfg.Tickets.ListEventTickets)
	admin.Get("/tickets/:id", cfg.Tickets.GetTicket)
	admin.Get("/tickets/:id/share", cfg.Tickets.ShareLink)
	admin.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)

	validator := app.Group("/validator", cfg.AuthMiddleware.Handle, auth.RequireRole())
	validator.Post("/scan", cfg.Validator.Scan)
	validator.Post("/confirm", cfg.Validator.Confirm)
	validator.Post("/reset", cfg.Validator.Reset)
}
