package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestLogin(t *testing.T) {
	users := newMemUsers(
		domain.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		domain.User{ID: 2, Name: "Derek", Email: "derek@example.com"},
		domain.User{ID: 3, Name: "Carla", Email: "carla@example.com"},
	)
	teams := newMemTeams(
		domain.Team{ID: "IT_SUPPORT", Name: "IT Support"},
		domain.Team{ID: "HELP_DESK", Name: "Help Desk"},
	)
	teams.memberships[2] = domain.TeamMembership{ID: 1, TeamID: "IT_SUPPORT", UserID: 2}
	teams.memberships[3] = domain.TeamMembership{ID: 2, TeamID: "HELP_DESK", UserID: 3}

	svc := NewIdentityService(users, teams)

	t.Run("user without membership is a requester", func(t *testing.T) {
		identity, err := svc.Login(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleRequester, identity.Role)
		assert.Nil(t, identity.TeamID)
	})

	t.Run("team member is a support agent", func(t *testing.T) {
		identity, err := svc.Login(context.Background(), "derek@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSupport, identity.Role)
		require.NotNil(t, identity.TeamID)
		assert.Equal(t, "IT_SUPPORT", *identity.TeamID)
	})

	t.Run("help desk member is triage staff", func(t *testing.T) {
		identity, err := svc.Login(context.Background(), "carla@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleHelpDesk, identity.Role)
		assert.Nil(t, identity.TeamID)
	})

	t.Run("email is trimmed before lookup", func(t *testing.T) {
		identity, err := svc.Login(context.Background(), "  alice@example.com  ")
		require.NoError(t, err)
		assert.Equal(t, 1, identity.UserID)
	})

	t.Run("unknown email is unauthorized", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com")
		assertDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("empty email fails validation", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "   ")
		assertDomainCode(t, err, "VALIDATION_FAILED")
	})
}

func TestListLoginOptions(t *testing.T) {
	users := newMemUsers(
		domain.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		domain.User{ID: 2, Name: "Derek", Email: "derek@example.com"},
	)
	svc := NewIdentityService(users, newMemTeams())

	options, err := svc.ListLoginOptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, options, 2)
}
