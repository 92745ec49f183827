package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SupportTicketsHandler serves the support-agent queue endpoints.
type SupportTicketsHandler struct {
	tickets    *service.TicketService
	dashboards *service.DashboardService
}

// NewSupportTicketsHandler constructs handler.
func NewSupportTicketsHandler(tickets *service.TicketService, dashboards *service.DashboardService) *SupportTicketsHandler {
	return &SupportTicketsHandler{tickets: tickets, dashboards: dashboards}
}

// ListTickets GET /support/tickets. Scoped to the agent's team.
func (h *SupportTicketsHandler) ListTickets(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	query := parseListQuery(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), *identity, query)
	if err != nil {
		return err
	}
	return c.JSON(listResponse(tickets, query))
}

// GetTicket GET /support/tickets/:id.
func (h *SupportTicketsHandler) GetTicket(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), *identity, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// StartWork POST /support/tickets/:id/start.
func (h *SupportTicketsHandler) StartWork(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.StartWork(c.UserContext(), *identity, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ResolveTicket POST /support/tickets/:id/resolve.
func (h *SupportTicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.ResolveTicket(c.UserContext(), *identity, ticketID, req.Answer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// CancelTicket POST /support/tickets/:id/cancel.
func (h *SupportTicketsHandler) CancelTicket(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.CancelTicket(c.UserContext(), *identity, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// SuggestSolution GET /support/tickets/:id/solution. Returns null data when
// the remote service has no suggestion.
func (h *SupportTicketsHandler) SuggestSolution(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	suggestion, err := h.tickets.SuggestSolution(c.UserContext(), *identity, ticketID, c.QueryInt("top_k"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": suggestion})
}

// FindSimilar GET /support/tickets/:id/similar.
func (h *SupportTicketsHandler) FindSimilar(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	results, err := h.tickets.FindSimilar(c.UserContext(), *identity, ticketID, c.QueryInt("top_k"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": results})
}

// Dashboard GET /support/dashboard.
func (h *SupportTicketsHandler) Dashboard(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	counts, err := h.dashboards.SupportOverview(c.UserContext(), *identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromStatusCounts(counts)})
}
