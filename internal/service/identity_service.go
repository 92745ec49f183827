package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// IdentityService resolves an email address into a role-bound identity.
// There are no passwords: accounts are provisioned out of band and the email
// is the lookup key, exactly as the login page expects.
type IdentityService struct {
	users repository.UserRepository
	teams repository.TeamRepository
}

// NewIdentityService constructs the service.
func NewIdentityService(users repository.UserRepository, teams repository.TeamRepository) *IdentityService {
	return &IdentityService{users: users, teams: teams}
}

// Login resolves the email to a user and derives the role from team
// membership. The returned identity is what gets stored in the session and
// stays fixed until the next login.
func (s *IdentityService) Login(ctx context.Context, email string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid email")
		}
		return nil, apperrors.MapError(err)
	}

	membership, err := s.teams.GetMembershipForUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	role, teamID := domain.DeriveRole(membership)
	return &domain.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   role,
		TeamID: teamID,
	}, nil
}

// ListLoginOptions returns all known users for the login picker.
func (s *IdentityService) ListLoginOptions(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
