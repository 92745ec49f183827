package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/intelligence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// IntelligenceClient is the advisory surface of the external intelligence
// API used by the lifecycle manager.
type IntelligenceClient interface {
	DefaultTopK() int
	SuggestTeam(ctx context.Context, ticketID, topK int) (*intelligence.TeamSuggestion, error)
	SuggestSolution(ctx context.Context, ticketID, topK int) (*intelligence.SolutionSuggestion, error)
	FindSimilar(ctx context.Context, ticketID, topK int) ([]intelligence.SimilarTicket, error)
	IndexTicket(ctx context.Context, req intelligence.IndexTicketRequest) bool
}

// TicketService is the lifecycle manager. Every status transition in the
// system goes through here: it validates the actor's role and the edge being
// taken, then applies the change as one conditional update so that two
// concurrent actors can never double-transition the same ticket.
type TicketService struct {
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	users      repository.UserRepository
	embeddings repository.EmbeddingRepository
	intel      IntelligenceClient
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	TeamRepo      repository.TeamRepository
	UserRepo      repository.UserRepository
	EmbeddingRepo repository.EmbeddingRepository
	Intelligence  IntelligenceClient
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		teams:      deps.TeamRepo,
		users:      deps.UserRepo,
		embeddings: deps.EmbeddingRepo,
		intel:      deps.Intelligence,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Subject  string
	Body     string
	Priority string
	Tags     []string
}

// ListQuery describes role-scoped listing parameters. RawStatuses carries the
// caller's status tokens before normalization; an unknown token yields an
// empty result rather than a query error.
type ListQuery struct {
	RawStatuses    []string
	UnassignedOnly bool
	Page           int
	PageSize       int
}

// CreateTicket files a new ticket for a requester. The local store is the
// system of record; the remote intelligence service is then asked to index
// the ticket, best effort.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Identity, input CreateTicketInput) (*domain.Ticket, error) {
	if actor.Role != domain.RoleRequester {
		return nil, apperrors.NewForbidden("only requesters can create tickets")
	}

	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Body)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	if body == "" {
		return nil, apperrors.NewValidationError("body is required", nil)
	}
	if len(input.Tags) > domain.MaxTicketTags {
		return nil, apperrors.NewValidationError("too many tags", map[string]any{"max": domain.MaxTicketTags})
	}

	ticket := &domain.Ticket{
		RequesterID: actor.UserID,
		Subject:     subject,
		Body:        body,
		Type:        "request",
		Priority:    domain.ParseTicketPriority(input.Priority),
		Status:      domain.TicketStatusOpen,
		Tags:        input.Tags,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.embeddings.ReplaceForTicket(ctx, ticket.ID, chunkTicketText(subject, body)); err != nil {
		s.logger.Warn("storing embedding chunks failed", zap.Int("ticket_id", ticket.ID), zap.Error(err))
	}

	if s.intel != nil {
		s.intel.IndexTicket(ctx, intelligence.IndexTicketRequest{
			TicketID:    ticket.ID,
			RequesterID: ticket.RequesterID,
			Subject:     ticket.Subject,
			Body:        ticket.Body,
			Type:        ticket.Type,
			Priority:    string(ticket.Priority),
			Status:      string(ticket.Status),
			CreatedAt:   ticket.CreatedAt,
		})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.TicketCreatedPayload{
			Subject:        ticket.Subject,
			Priority:       ticket.Priority,
			RequesterEmail: actor.Email,
			RequesterName:  actor.Name,
		},
	})
	return ticket, nil
}

// AssignTicket routes an open ticket to a team. HelpDesk only.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Identity, ticketID int, teamID string) (*domain.Ticket, error) {
	if actor.Role != domain.RoleHelpDesk {
		return nil, apperrors.NewForbidden("only help desk can assign tickets")
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusAssigned) {
		return nil, apperrors.NewConflict("ticket cannot be assigned in its current status",
			map[string]any{"status": ticket.Status})
	}

	applied, err := s.tickets.ApplyTransition(ctx, ticketID,
		[]domain.TicketStatus{domain.TicketStatusOpen},
		repository.TransitionChange{
			NewStatus:       domain.TicketStatusAssigned,
			AssignedTeamID:  &team.ID,
			ClearSuggestion: true,
		})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewConflict("ticket already updated", map[string]any{"ticket_id": ticketID})
	}

	requester, err := s.users.GetByID(ctx, ticket.RequesterID)
	if err != nil {
		s.logger.Warn("requester lookup for notification failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		requester = &domain.User{}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.TicketAssignedPayload{
			TeamID:         team.ID,
			TeamName:       team.Name,
			TeamEmail:      team.Email,
			RequesterEmail: requester.Email,
			RequesterName:  requester.Name,
		},
	})
	return s.getTicket(ctx, ticketID)
}

// StartWork moves an assigned ticket to in-progress. Support agents only,
// and only for tickets routed to their own team.
func (s *TicketService) StartWork(ctx context.Context, actor domain.Identity, ticketID int) (*domain.Ticket, error) {
	ticket, err := s.requireSupportOnOwnTeam(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusInProgress) {
		return nil, apperrors.NewConflict("work can only start on an assigned ticket",
			map[string]any{"status": ticket.Status})
	}

	applied, err := s.tickets.ApplyTransition(ctx, ticketID,
		[]domain.TicketStatus{domain.TicketStatusAssigned},
		repository.TransitionChange{NewStatus: domain.TicketStatusInProgress})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewConflict("ticket already updated", map[string]any{"ticket_id": ticketID})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStarted,
		TicketID: ticketID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload:  events.TicketStartedPayload{TeamID: *actor.TeamID},
	})
	return s.getTicket(ctx, ticketID)
}

// ResolveTicket records an answer and closes out the work. Support agents of
// the assigned team only; the answer is required.
func (s *TicketService) ResolveTicket(ctx context.Context, actor domain.Identity, ticketID int, answer string) (*domain.Ticket, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, apperrors.NewValidationError("answer is required", nil)
	}

	ticket, err := s.requireSupportOnOwnTeam(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusResolved) {
		return nil, apperrors.NewConflict("only an in-progress ticket can be resolved",
			map[string]any{"status": ticket.Status})
	}

	applied, err := s.tickets.ApplyTransition(ctx, ticketID,
		[]domain.TicketStatus{domain.TicketStatusInProgress},
		repository.TransitionChange{
			NewStatus: domain.TicketStatusResolved,
			Answer:    &answer,
		})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewConflict("ticket already updated", map[string]any{"ticket_id": ticketID})
	}

	requester, err := s.users.GetByID(ctx, ticket.RequesterID)
	if err != nil {
		s.logger.Warn("requester lookup for notification failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		requester = &domain.User{}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: ticketID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.TicketResolvedPayload{
			RequesterEmail: requester.Email,
			RequesterName:  requester.Name,
		},
	})
	return s.getTicket(ctx, ticketID)
}

// CancelTicket cancels any non-terminal ticket. Requesters may cancel their
// own tickets; support and help desk may cancel any.
func (s *TicketService) CancelTicket(ctx context.Context, actor domain.Identity, ticketID int) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleRequester && ticket.RequesterID != actor.UserID {
		return nil, apperrors.NewForbidden("requesters can only cancel their own tickets")
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewConflict("ticket is already closed", map[string]any{"status": ticket.Status})
	}

	applied, err := s.tickets.ApplyTransition(ctx, ticketID,
		domain.NonTerminalStatuses(),
		repository.TransitionChange{NewStatus: domain.TicketStatusCanceled})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewConflict("ticket already updated", map[string]any{"ticket_id": ticketID})
	}

	requester, err := s.users.GetByID(ctx, ticket.RequesterID)
	if err != nil {
		s.logger.Warn("requester lookup for notification failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		requester = &domain.User{}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCanceled,
		TicketID: ticketID,
		Actor:    events.Actor{UserID: actor.UserID, Role: actor.Role},
		Payload: events.TicketCanceledPayload{
			PriorStatus:    ticket.Status,
			RequesterEmail: requester.Email,
			RequesterName:  requester.Name,
		},
	})
	return s.getTicket(ctx, ticketID)
}

// SuggestTeam asks the intelligence service which team should own the ticket
// and persists the advisory suggestion. A nil result means no suggestion was
// available; the ticket itself is never transitioned here.
func (s *TicketService) SuggestTeam(ctx context.Context, actor domain.Identity, ticketID, topK int) (*intelligence.TeamSuggestion, error) {
	if actor.Role != domain.RoleHelpDesk {
		return nil, apperrors.NewForbidden("only help desk can request team suggestions")
	}
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.intel.DefaultTopK()
	}

	suggestion, err := s.intel.SuggestTeam(ctx, ticketID, topK)
	if err != nil || suggestion == nil {
		return nil, nil
	}
	if suggestion.AssignedTeamID != "" {
		if err := s.tickets.SetTeamSuggestion(ctx, ticketID, suggestion.AssignedTeamID); err != nil {
			s.logger.Warn("persisting team suggestion failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		}
	}
	return suggestion, nil
}

// SuggestSolution asks the intelligence service for a drafted answer and
// persists it as the advisory suggested answer.
func (s *TicketService) SuggestSolution(ctx context.Context, actor domain.Identity, ticketID, topK int) (*intelligence.SolutionSuggestion, error) {
	if _, err := s.requireSupportOnOwnTeam(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.intel.DefaultTopK()
	}

	suggestion, err := s.intel.SuggestSolution(ctx, ticketID, topK)
	if err != nil || suggestion == nil {
		return nil, nil
	}
	if suggestion.Solution != nil && strings.TrimSpace(*suggestion.Solution) != "" {
		if err := s.tickets.SetAnswerSuggestion(ctx, ticketID, *suggestion.Solution); err != nil {
			s.logger.Warn("persisting answer suggestion failed", zap.Int("ticket_id", ticketID), zap.Error(err))
		}
	}
	return suggestion, nil
}

// FindSimilar returns tickets the intelligence service ranks as similar.
// Advisory only; nil when the remote call fails.
func (s *TicketService) FindSimilar(ctx context.Context, actor domain.Identity, ticketID, topK int) ([]intelligence.SimilarTicket, error) {
	if _, err := s.requireSupportOnOwnTeam(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.intel.DefaultTopK()
	}
	results, err := s.intel.FindSimilar(ctx, ticketID, topK)
	if err != nil {
		return nil, nil
	}
	return results, nil
}

// DismissSuggestion clears the advisory suggestion fields. HelpDesk only.
func (s *TicketService) DismissSuggestion(ctx context.Context, actor domain.Identity, ticketID int) error {
	if actor.Role != domain.RoleHelpDesk {
		return apperrors.NewForbidden("only help desk can dismiss suggestions")
	}
	if err := s.tickets.ClearSuggestion(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListTickets returns the role-scoped listing: requesters see their own
// tickets, support agents their team's queue, and help desk everything.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Identity, query ListQuery) ([]domain.Ticket, error) {
	statuses, ok := normalizeStatuses(query.RawStatuses)
	if !ok {
		return []domain.Ticket{}, nil
	}

	page, pageSize := clampPagination(query.Page, query.PageSize)
	filter := repository.TicketFilter{
		Statuses: statuses,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}

	switch actor.Role {
	case domain.RoleRequester:
		requesterID := actor.UserID
		filter.RequesterID = &requesterID
	case domain.RoleSupport:
		if actor.TeamID == nil {
			return nil, apperrors.NewForbidden("support agent has no team")
		}
		filter.AssignedTeamID = actor.TeamID
	case domain.RoleHelpDesk:
		filter.Unassigned = query.UnassignedOnly
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// GetTicket fetches one ticket, enforcing the same visibility scope as the
// listing.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Identity, ticketID int) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleRequester:
		if ticket.RequesterID != actor.UserID {
			return nil, apperrors.NewForbidden("access denied")
		}
	case domain.RoleSupport:
		if actor.TeamID == nil || ticket.AssignedTeamID == nil || *ticket.AssignedTeamID != *actor.TeamID {
			return nil, apperrors.NewForbidden("access denied")
		}
	case domain.RoleHelpDesk:
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	return ticket, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// requireSupportOnOwnTeam loads the ticket and verifies the actor is a
// support agent of the team it is assigned to.
func (s *TicketService) requireSupportOnOwnTeam(ctx context.Context, actor domain.Identity, ticketID int) (*domain.Ticket, error) {
	if actor.Role != domain.RoleSupport {
		return nil, apperrors.NewForbidden("support role required")
	}
	if actor.TeamID == nil {
		return nil, apperrors.NewForbidden("support agent has no team")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssignedTeamID == nil || *ticket.AssignedTeamID != *actor.TeamID {
		return nil, apperrors.NewForbidden("ticket is assigned to another team")
	}
	return ticket, nil
}

// normalizeStatuses canonicalizes raw status tokens. ok is false when any
// token is unknown, which callers translate to an empty result.
func normalizeStatuses(raw []string) ([]domain.TicketStatus, bool) {
	statuses := make([]domain.TicketStatus, 0, len(raw))
	for _, token := range raw {
		if strings.TrimSpace(token) == "" {
			continue
		}
		status, ok := domain.ParseTicketStatus(token)
		if !ok {
			return nil, false
		}
		statuses = append(statuses, status)
	}
	return statuses, true
}

// clampPagination applies the listing bounds: page >= 1, page size 1..100
// with a default of 10.
func clampPagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
