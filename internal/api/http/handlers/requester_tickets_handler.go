package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// RequesterTicketsHandler serves the requester-facing ticket endpoints.
type RequesterTicketsHandler struct {
	tickets    *service.TicketService
	dashboards *service.DashboardService
}

// NewRequesterTicketsHandler constructs handler.
func NewRequesterTicketsHandler(tickets *service.TicketService, dashboards *service.DashboardService) *RequesterTicketsHandler {
	return &RequesterTicketsHandler{tickets: tickets, dashboards: dashboards}
}

// CreateTicket POST /requester/tickets.
func (h *RequesterTicketsHandler) CreateTicket(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), *identity, service.CreateTicketInput{
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: req.Priority,
		Tags:     req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /requester/tickets.
func (h *RequesterTicketsHandler) ListTickets(c *fiber.Ctx) error {
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

// GetTicket GET /requester/tickets/:id.
func (h *RequesterTicketsHandler) GetTicket(c *fiber.Ctx) error {
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

// CancelTicket POST /requester/tickets/:id/cancel.
func (h *RequesterTicketsHandler) CancelTicket(c *fiber.Ctx) error {
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

// Dashboard GET /requester/dashboard.
func (h *RequesterTicketsHandler) Dashboard(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	counts, err := h.dashboards.RequesterOverview(c.UserContext(), *identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromStatusCounts(counts)})
}

func requireIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("login required")
	}
	return identity, nil
}

func ticketIDParam(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

// parseListQuery reads the shared listing parameters. Statuses arrive as a
// comma-separated token list; normalization happens in the service.
func parseListQuery(c *fiber.Ctx) service.ListQuery {
	var statuses []string
	if raw := c.Query("status"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			if token = strings.TrimSpace(token); token != "" {
				statuses = append(statuses, token)
			}
		}
	}
	return service.ListQuery{
		RawStatuses:    statuses,
		UnassignedOnly: c.QueryBool("unassigned"),
		Page:           c.QueryInt("page", 1),
		PageSize:       c.QueryInt("page_size", 10),
	}
}

func listResponse(tickets []domain.Ticket, query service.ListQuery) fiber.Map {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return fiber.Map{"data": dto.TicketListResponse{
		Tickets:  dto.FromTickets(tickets),
		Page:     page,
		PageSize: pageSize,
	}}
}
