package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Requester         *handlers.RequesterTicketsHandler
	Support           *handlers.SupportTicketsHandler
	HelpDesk          *handlers.HelpDeskHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. Each role gets its own prefix so the
// role guard sits on the group, not on individual handlers.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Get("/users", cfg.Auth.ListUsers)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.SessionMiddleware.Handle, cfg.Auth.Me)

	requester := app.Group("/requester",
		cfg.SessionMiddleware.Handle, auth.RequireRole(domain.RoleRequester))
	requester.Get("/dashboard", cfg.Requester.Dashboard)
	requester.Post("/tickets", cfg.Requester.CreateTicket)
	requester.Get("/tickets", cfg.Requester.ListTickets)
	requester.Get("/tickets/:id", cfg.Requester.GetTicket)
	requester.Post("/tickets/:id/cancel", cfg.Requester.CancelTicket)

	support := app.Group("/support",
		cfg.SessionMiddleware.Handle, auth.RequireRole(domain.RoleSupport))
	support.Get("/dashboard", cfg.Support.Dashboard)
	support.Get("/tickets", cfg.Support.ListTickets)
	support.Get("/tickets/:id", cfg.Support.GetTicket)
	support.Post("/tickets/:id/start", cfg.Support.StartWork)
	support.Post("/tickets/:id/resolve", cfg.Support.ResolveTicket)
	support.Post("/tickets/:id/cancel", cfg.Support.CancelTicket)
	support.Get("/tickets/:id/solution", cfg.Support.SuggestSolution)
	support.Get("/tickets/:id/similar", cfg.Support.FindSimilar)

	helpdesk := app.Group("/helpdesk",
		cfg.SessionMiddleware.Handle, auth.RequireRole(domain.RoleHelpDesk))
	helpdesk.Get("/dashboard", cfg.HelpDesk.Dashboard)
	helpdesk.Get("/ticket-table", cfg.HelpDesk.TicketTable)
	helpdesk.Get("/teams", cfg.HelpDesk.ListTeams)
	helpdesk.Get("/tickets", cfg.HelpDesk.ListTickets)
	helpdesk.Get("/tickets/:id", cfg.HelpDesk.GetTicket)
	helpdesk.Post("/tickets/:id/assign", cfg.HelpDesk.AssignTicket)
	helpdesk.Post("/tickets/:id/cancel", cfg.HelpDesk.CancelTicket)
	helpdesk.Get("/tickets/:id/assign-suggestion", cfg.HelpDesk.SuggestTeam)
	helpdesk.Delete("/tickets/:id/suggestion", cfg.HelpDesk.DismissSuggestion)
}
