package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StatusCountsResponse is a per-status breakdown.
type StatusCountsResponse struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Canceled   int `json:"canceled"`
}

// FromStatusCounts maps the repository projection.
func FromStatusCounts(c *repository.StatusCounts) StatusCountsResponse {
	return StatusCountsResponse{
		Total:      c.Total,
		Open:       c.Open,
		Assigned:   c.Assigned,
		InProgress: c.InProgress,
		Resolved:   c.Resolved,
		Canceled:   c.Canceled,
	}
}

// TeamCountsResponse summarizes one team's load.
type TeamCountsResponse struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"team_name"`
	Description string `json:"team_description"`
	Total       int    `json:"total"`
	Active      int    `json:"active"`
}

// HelpDeskDashboardResponse is the triage overview.
type HelpDeskDashboardResponse struct {
	Total      int                  `json:"total"`
	Unassigned int                  `json:"unassigned"`
	Active     int                  `json:"active"`
	Resolved   int                  `json:"resolved"`
	Canceled   int                  `json:"canceled"`
	Teams      []TeamCountsResponse `json:"teams"`
}

// FromHelpDeskDashboard maps the service projection.
func FromHelpDeskDashboard(d *service.HelpDeskDashboard) HelpDeskDashboardResponse {
	out := HelpDeskDashboardResponse{
		Total:      d.Counts.Total,
		Unassigned: d.Counts.Unassigned,
		Active:     d.Counts.Active,
		Resolved:   d.Counts.Resolved,
		Canceled:   d.Counts.Canceled,
		Teams:      make([]TeamCountsResponse, 0, len(d.Teams)),
	}
	for _, tc := range d.Teams {
		out.Teams = append(out.Teams, TeamCountsResponse{
			TeamID:      tc.TeamID,
			Name:        tc.Name,
			Description: tc.Description,
			Total:       tc.Total,
			Active:      tc.Active,
		})
	}
	return out
}

// HelpdeskTicketRowResponse mirrors one row of the helpdesk_tickets view.
type HelpdeskTicketRowResponse struct {
	TicketID    int       `json:"ticket_id"`
	Title       string    `json:"title"`
	User        string    `json:"user"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssignedTo  string    `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description"`
	Answer      string    `json:"answer"`
}

// FromHelpdeskRows maps view rows onto the wire shape.
func FromHelpdeskRows(rows []repository.HelpdeskTicketRow) []HelpdeskTicketRowResponse {
	out := make([]HelpdeskTicketRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, HelpdeskTicketRowResponse{
			TicketID:    row.TicketID,
			Title:       row.Title,
			User:        row.User,
			Status:      row.Status,
			Priority:    row.Priority,
			AssignedTo:  row.AssignedTo,
			CreatedAt:   row.CreatedAt,
			Description: row.Description,
			Answer:      row.Answer,
		})
	}
	return out
}
