package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type memDashboards struct {
	global     repository.GlobalCounts
	perTeam    []repository.TeamCounts
	byUser     map[int]repository.StatusCounts
	byTeam     map[string]repository.StatusCounts
	viewRows   []repository.HelpdeskTicketRow
	lastLimit  int
	lastOffset int
}

func (m *memDashboards) GlobalCounts(_ context.Context) (*repository.GlobalCounts, error) {
	counts := m.global
	return &counts, nil
}

func (m *memDashboards) PerTeamCounts(_ context.Context) ([]repository.TeamCounts, error) {
	return m.perTeam, nil
}

func (m *memDashboards) CountsForRequester(_ context.Context, requesterID int) (*repository.StatusCounts, error) {
	counts := m.byUser[requesterID]
	return &counts, nil
}

func (m *memDashboards) CountsForTeam(_ context.Context, teamID string) (*repository.StatusCounts, error) {
	counts := m.byTeam[teamID]
	return &counts, nil
}

func (m *memDashboards) ListHelpdeskView(_ context.Context, limit, offset int) ([]repository.HelpdeskTicketRow, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	return m.viewRows, nil
}

func TestHelpDeskOverview(t *testing.T) {
	repo := &memDashboards{
		global:  repository.GlobalCounts{Total: 10, Unassigned: 3, Active: 4, Resolved: 2, Canceled: 1},
		perTeam: []repository.TeamCounts{{TeamID: "IT_SUPPORT", Name: "IT Support", Total: 5, Active: 2}},
	}
	svc := NewDashboardService(repo)

	overview, err := svc.HelpDeskOverview(context.Background(), helpdesk)
	require.NoError(t, err)
	assert.Equal(t, 10, overview.Counts.Total)
	require.Len(t, overview.Teams, 1)
	assert.Equal(t, "IT_SUPPORT", overview.Teams[0].TeamID)

	_, err = svc.HelpDeskOverview(context.Background(), requester)
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestRequesterOverview(t *testing.T) {
	repo := &memDashboards{byUser: map[int]repository.StatusCounts{
		1: {Total: 3, Open: 1, Resolved: 2},
	}}
	svc := NewDashboardService(repo)

	counts, err := svc.RequesterOverview(context.Background(), requester)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Total)

	_, err = svc.RequesterOverview(context.Background(), helpdesk)
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestSupportOverview(t *testing.T) {
	repo := &memDashboards{byTeam: map[string]repository.StatusCounts{
		"IT_SUPPORT": {Total: 4, Assigned: 2, InProgress: 2},
	}}
	svc := NewDashboardService(repo)

	counts, err := svc.SupportOverview(context.Background(), supportAgent("IT_SUPPORT"))
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Total)

	_, err = svc.SupportOverview(context.Background(), requester)
	assertDomainCode(t, err, "FORBIDDEN")

	noTeam := domain.Identity{UserID: 9, Role: domain.RoleSupport}
	_, err = svc.SupportOverview(context.Background(), noTeam)
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestHelpdeskTicketListPagination(t *testing.T) {
	repo := &memDashboards{}
	svc := NewDashboardService(repo)

	rows, err := svc.HelpdeskTicketList(context.Background(), helpdesk, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 100, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	_, err = svc.HelpdeskTicketList(context.Background(), helpdesk, 3, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)
	assert.Equal(t, 40, repo.lastOffset)

	_, err = svc.HelpdeskTicketList(context.Background(), requester, 1, 10)
	assertDomainCode(t, err, "FORBIDDEN")
}
