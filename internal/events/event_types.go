package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketStarted  EventType = "ticket_started"
	EventTicketResolved EventType = "ticket_resolved"
	EventTicketCanceled EventType = "ticket_canceled"
)

// Actor identifies who triggered a lifecycle transition.
type Actor struct {
	UserID int         `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a lifecycle event emitted by the ticket service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int         `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject        string                `json:"subject"`
	Priority       domain.TicketPriority `json:"priority"`
	RequesterEmail string                `json:"requester_email"`
	RequesterName  string                `json:"requester_name"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	TeamEmail      string `json:"team_email"`
	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
}

// TicketStartedPayload payload.
type TicketStartedPayload struct {
	TeamID string `json:"team_id"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
}

// TicketCanceledPayload payload.
type TicketCanceledPayload struct {
	PriorStatus    domain.TicketStatus `json:"prior_status"`
	RequesterEmail string              `json:"requester_email"`
	RequesterName  string              `json:"requester_name"`
}
