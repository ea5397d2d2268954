package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/dpp-hub/portal-core/internal/api/http/handlers"
	"github.com/dpp-hub/portal-core/internal/auth"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Domain         *handlers.DomainHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
	// Session and DomainGate run before every tenant facing route.
	Session    fiber.Handler
	DomainGate fiber.Handler
}

// RegisterRoutes wires HTTP routes. Probes and metrics are registered ahead
// of the domain gate so they answer on any host.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Use(cfg.Session, cfg.DomainGate)

	app.Get("/", cfg.Domain.Entry)
	app.Get("/api/domain", cfg.Domain.Current)

	app.Post("/auth/staff/login", cfg.Staff.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Post("/staff", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Staff.CreateStaff)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/sla", cfg.Tickets.GetSLA)
	tickets.Get("/:id/activity", cfg.Tickets.ListActivity)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Post("/:id/assignee", cfg.Tickets.Assign)
	tickets.Delete("/:id/assignee", cfg.Tickets.Unassign)
	tickets.Patch("/:id/category", cfg.Tickets.ChangeCategory)
	tickets.Put("/:id/tags", cfg.Tickets.UpdateTags)
	tickets.Post("/:id/merge", cfg.Tickets.Merge)
}
