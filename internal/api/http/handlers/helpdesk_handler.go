package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// HelpDeskHandler serves the triage endpoints.
type HelpDeskHandler struct {
	tickets    *service.TicketService
	dashboards *service.DashboardService
	teams      repository.TeamRepository
}

// NewHelpDeskHandler constructs handler.
func NewHelpDeskHandler(tickets *service.TicketService, dashboards *service.DashboardService, teams repository.TeamRepository) *HelpDeskHandler {
	return &HelpDeskHandler{tickets: tickets, dashboards: dashboards, teams: teams}
}

// ListTickets GET /helpdesk/tickets. Sees everything; ?unassigned=true
// narrows to the triage queue.
func (h *HelpDeskHandler) ListTickets(c *fiber.Ctx) error {
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

// GetTicket GET /helpdesk/tickets/:id.
func (h *HelpDeskHandler) GetTicket(c *fiber.Ctx) error {
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

// AssignTicket POST /helpdesk/tickets/:id/assign.
func (h *HelpDeskHandler) AssignTicket(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TeamID) == "" {
		return apperrors.NewValidationError("team_id is required", nil)
	}
	ticket, err := h.tickets.AssignTicket(c.UserContext(), *identity, ticketID, req.TeamID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// CancelTicket POST /helpdesk/tickets/:id/cancel.
func (h *HelpDeskHandler) CancelTicket(c *fiber.Ctx) error {
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

// SuggestTeam GET /helpdesk/tickets/:id/assign-suggestion. Returns null data
// when the remote service has no suggestion.
func (h *HelpDeskHandler) SuggestTeam(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	suggestion, err := h.tickets.SuggestTeam(c.UserContext(), *identity, ticketID, c.QueryInt("top_k"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": suggestion})
}

// DismissSuggestion DELETE /helpdesk/tickets/:id/suggestion.
func (h *HelpDeskHandler) DismissSuggestion(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DismissSuggestion(c.UserContext(), *identity, ticketID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"dismissed": true}})
}

// ListTeams GET /helpdesk/teams. Backs the assignment picker.
func (h *HelpDeskHandler) ListTeams(c *fiber.Ctx) error {
	if _, err := requireIdentity(c); err != nil {
		return err
	}
	teams, err := h.teams.ListAll(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromTeams(teams)})
}

// Dashboard GET /helpdesk/dashboard.
func (h *HelpDeskHandler) Dashboard(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	overview, err := h.dashboards.HelpDeskOverview(c.UserContext(), *identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromHelpDeskDashboard(overview)})
}

// TicketTable GET /helpdesk/ticket-table. Pages the denormalized view.
func (h *HelpDeskHandler) TicketTable(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	rows, err := h.dashboards.HelpdeskTicketList(c.UserContext(), *identity,
		c.QueryInt("page", 1), c.QueryInt("page_size", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromHelpdeskRows(rows)})
}
