package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GlobalCounts is the help-desk wide ticket breakdown.
type GlobalCounts struct {
	Total      int
	Unassigned int
	Active     int
	Resolved   int
	Canceled   int
}

// TeamCounts summarizes one team's ticket load.
type TeamCounts struct {
	TeamID      string
	Name        string
	Description string
	Total       int
	Active      int
}

// StatusCounts is a per-status breakdown scoped to a requester or a team.
type StatusCounts struct {
	Total      int
	Open       int
	Assigned   int
	InProgress int
	Resolved   int
	Canceled   int
}

// HelpdeskTicketRow mirrors the read-only helpdesk_tickets database view.
type HelpdeskTicketRow struct {
	TicketID    int
	Title       string
	User        string
	Status      string
	Priority    string
	AssignedTo  string
	CreatedAt   time.Time
	Description string
	Answer      string
}

// DashboardRepository computes read-side projections with aggregate queries.
// Counts are recomputed on every call; nothing here mutates state.
type DashboardRepository interface {
	GlobalCounts(ctx context.Context) (*GlobalCounts, error)
	PerTeamCounts(ctx context.Context) ([]TeamCounts, error)
	CountsForRequester(ctx context.Context, requesterID int) (*StatusCounts, error)
	CountsForTeam(ctx context.Context, teamID string) (*StatusCounts, error)
	ListHelpdeskView(ctx context.Context, limit, offset int) ([]HelpdeskTicketRow, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository constructs repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) GlobalCounts(ctx context.Context) (*GlobalCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE assigned_team_id IS NULL),
               COUNT(*) FILTER (WHERE status IN ('ASSIGNED','INPROGRESS')),
               COUNT(*) FILTER (WHERE status = 'RESOLVED'),
               COUNT(*) FILTER (WHERE status = 'CANCELED')
        FROM tickets`
	var counts GlobalCounts
	if err := r.pool.QueryRow(ctx, query).Scan(
		&counts.Total,
		&counts.Unassigned,
		&counts.Active,
		&counts.Resolved,
		&counts.Canceled,
	); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *dashboardRepository) PerTeamCounts(ctx context.Context) ([]TeamCounts, error) {
	const query = `
        SELECT tm.team_id, tm.team_name, tm.team_description,
               COUNT(t.ticket_id),
               COUNT(t.ticket_id) FILTER (WHERE t.status IN ('ASSIGNED','INPROGRESS'))
        FROM teams tm
        LEFT JOIN tickets t ON t.assigned_team_id = tm.team_id
        GROUP BY tm.team_id, tm.team_name, tm.team_description
        ORDER BY tm.team_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TeamCounts
	for rows.Next() {
		var tc TeamCounts
		if err := rows.Scan(&tc.TeamID, &tc.Name, &tc.Description, &tc.Total, &tc.Active); err != nil {
			return nil, err
		}
		result = append(result, tc)
	}
	return result, rows.Err()
}

func (r *dashboardRepository) CountsForRequester(ctx context.Context, requesterID int) (*StatusCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'OPEN'),
               COUNT(*) FILTER (WHERE status = 'ASSIGNED'),
               COUNT(*) FILTER (WHERE status = 'INPROGRESS'),
               COUNT(*) FILTER (WHERE status = 'RESOLVED'),
               COUNT(*) FILTER (WHERE status = 'CANCELED')
        FROM tickets WHERE requester_id=$1`
	return r.scanStatusCounts(ctx, query, requesterID)
}

func (r *dashboardRepository) CountsForTeam(ctx context.Context, teamID string) (*StatusCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'OPEN'),
               COUNT(*) FILTER (WHERE status = 'ASSIGNED'),
               COUNT(*) FILTER (WHERE status = 'INPROGRESS'),
               COUNT(*) FILTER (WHERE status = 'RESOLVED'),
               COUNT(*) FILTER (WHERE status = 'CANCELED')
        FROM tickets WHERE assigned_team_id=$1`
	return r.scanStatusCounts(ctx, query, teamID)
}

func (r *dashboardRepository) scanStatusCounts(ctx context.Context, query string, arg any) (*StatusCounts, error) {
	var counts StatusCounts
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&counts.Total,
		&counts.Open,
		&counts.Assigned,
		&counts.InProgress,
		&counts.Resolved,
		&counts.Canceled,
	); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *dashboardRepository) ListHelpdeskView(ctx context.Context, limit, offset int) ([]HelpdeskTicketRow, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ticket_id, title, "user", status, priority, assigned_to, created_at, description, answer
        FROM helpdesk_tickets
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []HelpdeskTicketRow
	for rows.Next() {
		var row HelpdeskTicketRow
		if err := rows.Scan(
			&row.TicketID,
			&row.Title,
			&row.User,
			&row.Status,
			&row.Priority,
			&row.AssignedTo,
			&row.CreatedAt,
			&row.Description,
			&row.Answer,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
