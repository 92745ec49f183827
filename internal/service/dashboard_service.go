package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// HelpDeskDashboard is the triage overview: global counts plus per-team load.
type HelpDeskDashboard struct {
	Counts *repository.GlobalCounts
	Teams  []repository.TeamCounts
}

// DashboardService serves the read-side projections for each role's landing
// page. All numbers are recomputed from the tickets table on every call.
type DashboardService struct {
	dashboards repository.DashboardRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(dashboards repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboards: dashboards}
}

// HelpDeskOverview returns global and per-team counts. HelpDesk only.
func (s *DashboardService) HelpDeskOverview(ctx context.Context, actor domain.Identity) (*HelpDeskDashboard, error) {
	if actor.Role != domain.RoleHelpDesk {
		return nil, apperrors.NewForbidden("help desk role required")
	}
	counts, err := s.dashboards.GlobalCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	teams, err := s.dashboards.PerTeamCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &HelpDeskDashboard{Counts: counts, Teams: teams}, nil
}

// RequesterOverview returns the caller's own ticket breakdown.
func (s *DashboardService) RequesterOverview(ctx context.Context, actor domain.Identity) (*repository.StatusCounts, error) {
	if actor.Role != domain.RoleRequester {
		return nil, apperrors.NewForbidden("requester role required")
	}
	counts, err := s.dashboards.CountsForRequester(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counts, nil
}

// SupportOverview returns the breakdown for the agent's team queue.
func (s *DashboardService) SupportOverview(ctx context.Context, actor domain.Identity) (*repository.StatusCounts, error) {
	if actor.Role != domain.RoleSupport {
		return nil, apperrors.NewForbidden("support role required")
	}
	if actor.TeamID == nil {
		return nil, apperrors.NewForbidden("support agent has no team")
	}
	counts, err := s.dashboards.CountsForTeam(ctx, *actor.TeamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counts, nil
}

// HelpdeskTicketList pages through the denormalized helpdesk_tickets view.
// HelpDesk only.
func (s *DashboardService) HelpdeskTicketList(ctx context.Context, actor domain.Identity, page, pageSize int) ([]repository.HelpdeskTicketRow, error) {
	if actor.Role != domain.RoleHelpDesk {
		return nil, apperrors.NewForbidden("help desk role required")
	}
	page, pageSize = clampPagination(page, pageSize)
	rows, err := s.dashboards.ListHelpdeskView(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if rows == nil {
		rows = []repository.HelpdeskTicketRow{}
	}
	return rows, nil
}
