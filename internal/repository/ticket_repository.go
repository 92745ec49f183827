package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters. Status values must already be
// canonical; unknown tokens are filtered out before reaching the repository.
type TicketFilter struct {
	RequesterID    *int
	AssignedTeamID *string
	Unassigned     bool
	Statuses       []domain.TicketStatus
	Limit          int
	Offset         int
}

// TransitionChange describes the field updates applied together with a
// status transition as one atomic statement.
type TransitionChange struct {
	NewStatus       domain.TicketStatus
	AssignedTeamID  *string
	Answer          *string
	ClearSuggestion bool
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// ApplyTransition performs the status change as a single conditional
	// update. It reports false without error when the ticket was not in one
	// of the expected states, which is how concurrent double-transitions are
	// detected.
	ApplyTransition(ctx context.Context, id int, from []domain.TicketStatus, change TransitionChange) (bool, error)
	SetTeamSuggestion(ctx context.Context, id int, teamID string) error
	SetAnswerSuggestion(ctx context.Context, id int, answer string) error
	ClearSuggestion(ctx context.Context, id int) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `ticket_id, requester_id, subject, body, answer, suggested_answer, type,
               priority, assigned_team_id, suggested_assigned_team_id, status, tags, created_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (requester_id, subject, body, type, priority, status, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING ticket_id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.RequesterID,
		ticket.Subject,
		ticket.Body,
		ticket.Type,
		ticket.Priority,
		ticket.Status,
		ticket.Tags,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssignedTeamID != nil {
		args = append(args, *filter.AssignedTeamID)
		clauses = append(clauses, fmt.Sprintf("assigned_team_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_team_id IS NULL")
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ApplyTransition(ctx context.Context, id int, from []domain.TicketStatus, change TransitionChange) (bool, error) {
	sets := []string{}
	args := []any{}

	args = append(args, change.NewStatus)
	sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	if change.AssignedTeamID != nil {
		args = append(args, *change.AssignedTeamID)
		sets = append(sets, fmt.Sprintf("assigned_team_id=$%d", len(args)))
	}
	if change.Answer != nil {
		args = append(args, *change.Answer)
		sets = append(sets, fmt.Sprintf("answer=$%d", len(args)))
	}
	if change.ClearSuggestion {
		sets = append(sets, "suggested_assigned_team_id=NULL", "suggested_answer=NULL")
	}

	args = append(args, id)
	idPos := len(args)
	args = append(args, statusStrings(from))
	fromPos := len(args)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE ticket_id=$%d AND status = ANY($%d)`,
		strings.Join(sets, ", "), idPos, fromPos)

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) SetTeamSuggestion(ctx context.Context, id int, teamID string) error {
	return r.execOnTicket(ctx, `UPDATE tickets SET suggested_assigned_team_id=$1 WHERE ticket_id=$2`, teamID, id)
}

func (r *ticketRepository) SetAnswerSuggestion(ctx context.Context, id int, answer string) error {
	return r.execOnTicket(ctx, `UPDATE tickets SET suggested_answer=$1 WHERE ticket_id=$2`, answer, id)
}

func (r *ticketRepository) ClearSuggestion(ctx context.Context, id int) error {
	const query = `UPDATE tickets SET suggested_assigned_team_id=NULL, suggested_answer=NULL WHERE ticket_id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) execOnTicket(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func statusStrings(statuses []domain.TicketStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.RequesterID,
			&ticket.Subject,
			&ticket.Body,
			&ticket.Answer,
			&ticket.SuggestedAnswer,
			&ticket.Type,
			&ticket.Priority,
			&ticket.AssignedTeamID,
			&ticket.SuggestedTeamID,
			&ticket.Status,
			&ticket.Tags,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
