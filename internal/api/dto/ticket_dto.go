package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	TeamID string `json:"team_id"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	Answer string `json:"answer"`
}

// TicketResponse is the full ticket representation returned everywhere a
// ticket is read or mutated.
type TicketResponse struct {
	TicketID        int                   `json:"ticket_id"`
	RequesterID     int                   `json:"requester_id"`
	Subject         string                `json:"subject"`
	Body            string                `json:"body"`
	Answer          *string               `json:"answer"`
	SuggestedAnswer *string               `json:"suggested_answer,omitempty"`
	Type            string                `json:"type"`
	Priority        domain.TicketPriority `json:"priority"`
	AssignedTeamID  *string               `json:"assigned_team_id"`
	SuggestedTeamID *string               `json:"suggested_team_id,omitempty"`
	Status          domain.TicketStatus   `json:"status"`
	Tags            []string              `json:"tags"`
	CreatedAt       time.Time             `json:"created_at"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:        t.ID,
		RequesterID:     t.RequesterID,
		Subject:         t.Subject,
		Body:            t.Body,
		Answer:          t.Answer,
		SuggestedAnswer: t.SuggestedAnswer,
		Type:            t.Type,
		Priority:        t.Priority,
		AssignedTeamID:  t.AssignedTeamID,
		SuggestedTeamID: t.SuggestedTeamID,
		Status:          t.Status,
		Tags:            t.Tags,
		CreatedAt:       t.CreatedAt,
	}
}

// FromTickets maps a slice, never returning nil.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, FromTicket(&tickets[i]))
	}
	return out
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Tickets  []TicketResponse `json:"tickets"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// TeamResponse is the wire shape for a team.
type TeamResponse struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"team_name"`
	Description string `json:"team_description"`
}

// FromTeams maps domain teams onto the wire shape.
func FromTeams(teams []domain.Team) []TeamResponse {
	out := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		out = append(out, TeamResponse{
			TeamID:      team.ID,
			Name:        team.Name,
			Description: team.Description,
		})
	}
	return out
}
