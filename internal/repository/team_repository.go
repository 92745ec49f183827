package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TeamRepository manages persistence for teams and team memberships.
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListAll(ctx context.Context) ([]domain.Team, error)
	GetMembershipForUser(ctx context.Context, userID int) (*domain.TeamMembership, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT team_id, team_name, team_description, team_email_address
        FROM teams WHERE team_id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.Email,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListAll(ctx context.Context) ([]domain.Team, error) {
	const query = `
        SELECT team_id, team_name, team_description, team_email_address
        FROM teams ORDER BY team_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.Email); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

// GetMembershipForUser returns the user's membership, or (nil, nil) when the
// user belongs to no team.
func (r *teamRepository) GetMembershipForUser(ctx context.Context, userID int) (*domain.TeamMembership, error) {
	const query = `
        SELECT team_member_id, team_id, user_id
        FROM team_members WHERE user_id=$1
        LIMIT 1`
	var membership domain.TeamMembership
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&membership.ID,
		&membership.TeamID,
		&membership.UserID,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}
