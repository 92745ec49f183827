package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/intelligence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type memTickets struct {
	nextID  int
	tickets map[int]*domain.Ticket
}

func newMemTickets() *memTickets {
	return &memTickets{nextID: 1, tickets: map[int]*domain.Ticket{}}
}

func (m *memTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = m.nextID
	ticket.CreatedAt = time.Now()
	m.nextID++
	copied := *ticket
	m.tickets[ticket.ID] = &copied
	return nil
}

func (m *memTickets) GetByID(_ context.Context, id int) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (m *memTickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssignedTeamID != nil && (ticket.AssignedTeamID == nil || *ticket.AssignedTeamID != *filter.AssignedTeamID) {
			continue
		}
		if filter.Unassigned && ticket.AssignedTeamID != nil {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (m *memTickets) ApplyTransition(_ context.Context, id int, from []domain.TicketStatus, change repository.TransitionChange) (bool, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range from {
		if ticket.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	ticket.Status = change.NewStatus
	if change.AssignedTeamID != nil {
		ticket.AssignedTeamID = change.AssignedTeamID
	}
	if change.Answer != nil {
		ticket.Answer = change.Answer
	}
	if change.ClearSuggestion {
		ticket.SuggestedTeamID = nil
		ticket.SuggestedAnswer = nil
	}
	return true, nil
}

func (m *memTickets) SetTeamSuggestion(_ context.Context, id int, teamID string) error {
	ticket, ok := m.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.SuggestedTeamID = &teamID
	return nil
}

func (m *memTickets) SetAnswerSuggestion(_ context.Context, id int, answer string) error {
	ticket, ok := m.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.SuggestedAnswer = &answer
	return nil
}

func (m *memTickets) ClearSuggestion(_ context.Context, id int) error {
	ticket, ok := m.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.SuggestedTeamID = nil
	ticket.SuggestedAnswer = nil
	return nil
}

type memTeams struct {
	teams       map[string]domain.Team
	memberships map[int]domain.TeamMembership
}

func newMemTeams(teams ...domain.Team) *memTeams {
	m := &memTeams{teams: map[string]domain.Team{}, memberships: map[int]domain.TeamMembership{}}
	for _, team := range teams {
		m.teams[team.ID] = team
	}
	return m
}

func (m *memTeams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := m.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &team, nil
}

func (m *memTeams) ListAll(_ context.Context) ([]domain.Team, error) {
	var result []domain.Team
	for _, team := range m.teams {
		result = append(result, team)
	}
	return result, nil
}

func (m *memTeams) GetMembershipForUser(_ context.Context, userID int) (*domain.TeamMembership, error) {
	membership, ok := m.memberships[userID]
	if !ok {
		return nil, nil
	}
	return &membership, nil
}

type memUsers struct {
	users map[int]domain.User
}

func newMemUsers(users ...domain.User) *memUsers {
	m := &memUsers{users: map[int]domain.User{}}
	for _, user := range users {
		m.users[user.ID] = user
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id int) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) ListAll(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range m.users {
		result = append(result, user)
	}
	return result, nil
}

type memEmbeddings struct {
	chunks map[int][]string
}

func newMemEmbeddings() *memEmbeddings {
	return &memEmbeddings{chunks: map[int][]string{}}
}

func (m *memEmbeddings) ReplaceForTicket(_ context.Context, ticketID int, chunks []string) error {
	m.chunks[ticketID] = chunks
	return nil
}

func (m *memEmbeddings) ListByTicket(_ context.Context, ticketID int) ([]domain.TicketEmbedding, error) {
	var result []domain.TicketEmbedding
	for i, chunk := range m.chunks[ticketID] {
		result = append(result, domain.TicketEmbedding{ID: i + 1, TicketID: ticketID, ChunkText: chunk})
	}
	return result, nil
}

type fakeIntel struct {
	team     *intelligence.TeamSuggestion
	solution *intelligence.SolutionSuggestion
	similar  []intelligence.SimilarTicket
	indexed  []int
}

func (f *fakeIntel) DefaultTopK() int { return 5 }

func (f *fakeIntel) SuggestTeam(_ context.Context, _, _ int) (*intelligence.TeamSuggestion, error) {
	return f.team, nil
}

func (f *fakeIntel) SuggestSolution(_ context.Context, _, _ int) (*intelligence.SolutionSuggestion, error) {
	return f.solution, nil
}

func (f *fakeIntel) FindSimilar(_ context.Context, _, _ int) ([]intelligence.SimilarTicket, error) {
	return f.similar, nil
}

func (f *fakeIntel) IndexTicket(_ context.Context, req intelligence.IndexTicketRequest) bool {
	f.indexed = append(f.indexed, req.TicketID)
	return true
}

type fixture struct {
	svc     *TicketService
	tickets *memTickets
	intel   *fakeIntel
	events  []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tickets: newMemTickets(),
		intel:   &fakeIntel{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketStarted,
		events.EventTicketResolved,
		events.EventTicketCanceled,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, event events.Event) error {
			f.events = append(f.events, event)
			return nil
		})
	}
	teamID := "IT_SUPPORT"
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo: f.tickets,
		TeamRepo: newMemTeams(
			domain.Team{ID: teamID, Name: "IT Support", Email: "it@example.com"},
			domain.Team{ID: "HELP_DESK", Name: "Help Desk", Email: "hd@example.com"},
		),
		UserRepo: newMemUsers(
			domain.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
			domain.User{ID: 2, Name: "Derek", Email: "derek@example.com"},
		),
		EmbeddingRepo: newMemEmbeddings(),
		Intelligence:  f.intel,
		Dispatcher:    dispatcher,
	})
	return f
}

var (
	requester = domain.Identity{UserID: 1, Name: "Alice", Email: "alice@example.com", Role: domain.RoleRequester}
	helpdesk  = domain.Identity{UserID: 3, Name: "Carla", Email: "carla@example.com", Role: domain.RoleHelpDesk}
)

func supportAgent(teamID string) domain.Identity {
	return domain.Identity{UserID: 2, Name: "Derek", Email: "derek@example.com", Role: domain.RoleSupport, TeamID: &teamID}
}

func (f *fixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), requester, CreateTicketInput{
		Subject: "VPN down", Body: "Cannot connect since this morning",
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicket(t *testing.T) {
	f := newFixture(t)

	ticket := f.createTicket(t)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, 1, ticket.RequesterID)
	assert.Equal(t, []int{ticket.ID}, f.intel.indexed)
	require.Len(t, f.events, 1)
	assert.Equal(t, events.EventTicketCreated, f.events[0].Type)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTicket(context.Background(), requester, CreateTicketInput{Subject: "  ", Body: "x"})
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = f.svc.CreateTicket(context.Background(), requester, CreateTicketInput{Subject: "x", Body: ""})
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = f.svc.CreateTicket(context.Background(), helpdesk, CreateTicketInput{Subject: "x", Body: "y"})
	assertDomainCode(t, err, "FORBIDDEN")
}

func TestAssignTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	assigned, err := f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "IT_SUPPORT")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedTeamID)
	assert.Equal(t, "IT_SUPPORT", *assigned.AssignedTeamID)

	require.Len(t, f.events, 2)
	payload, ok := f.events[1].Payload.(events.TicketAssignedPayload)
	require.True(t, ok)
	assert.Equal(t, "it@example.com", payload.TeamEmail)
	assert.Equal(t, "alice@example.com", payload.RequesterEmail)
}

func TestAssignTicketRejections(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.svc.AssignTicket(context.Background(), requester, ticket.ID, "IT_SUPPORT")
	assertDomainCode(t, err, "FORBIDDEN")

	_, err = f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "NO_SUCH_TEAM")
	assertDomainCode(t, err, "NOT_FOUND")

	_, err = f.svc.AssignTicket(context.Background(), helpdesk, 999, "IT_SUPPORT")
	assertDomainCode(t, err, "NOT_FOUND")

	_, err = f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "IT_SUPPORT")
	require.NoError(t, err)
	_, err = f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "IT_SUPPORT")
	assertDomainCode(t, err, "CONFLICT")
}

func TestStartWorkRequiresAssignedStatus(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.svc.StartWork(context.Background(), supportAgent("IT_SUPPORT"), ticket.ID)
	assertDomainCode(t, err, "FORBIDDEN")

	_, err = f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "IT_SUPPORT")
	require.NoError(t, err)

	_, err = f.svc.StartWork(context.Background(), supportAgent("NETWORK_OPS"), ticket.ID)
	assertDomainCode(t, err, "FORBIDDEN")

	started, err := f.svc.StartWork(context.Background(), supportAgent("IT_SUPPORT"), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, started.Status)

	_, err = f.svc.StartWork(context.Background(), supportAgent("IT_SUPPORT"), ticket.ID)
	assertDomainCode(t, err, "CONFLICT")
}

func TestResolveTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)
	agent := supportAgent("IT_SUPPORT")

	_, err := f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "IT_SUPPORT")
	require.NoError(t, err)

	_, err = f.svc.ResolveTicket(context.Background(), agent, ticket.ID, "restart the router")
	assertDomainCode(t, err, "CONFLICT")

	_, err = f.svc.StartWork(context.Background(), agent, ticket.ID)
	require.NoError(t, err)

	_, err = f.svc.ResolveTicket(context.Background(), agent, ticket.ID, "   ")
	assertDomainCode(t, err, "VALIDATION_FAILED")

	resolved, err := f.svc.ResolveTicket(context.Background(), agent, ticket.ID, "restart the router")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Answer)
	assert.Equal(t, "restart the router", *resolved.Answer)
}

func TestCancelTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	other := domain.Identity{UserID: 42, Role: domain.RoleRequester}
	_, err := f.svc.CancelTicket(context.Background(), other, ticket.ID)
	assertDomainCode(t, err, "FORBIDDEN")

	canceled, err := f.svc.CancelTicket(context.Background(), requester, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCanceled, canceled.Status)

	_, err = f.svc.CancelTicket(context.Background(), requester, ticket.ID)
	assertDomainCode(t, err, "CONFLICT")
}

func TestSuggestTeamPersists(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)
	f.intel.team = &intelligence.TeamSuggestion{
		TicketID:       ticket.ID,
		AssignedTeamID: "IT_SUPPORT",
		Reasoning:      "hardware keywords",
	}

	suggestion, err := f.svc.SuggestTeam(context.Background(), helpdesk, ticket.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, suggestion)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SuggestedTeamID)
	assert.Equal(t, "IT_SUPPORT", *stored.SuggestedTeamID)
}

func TestSuggestTeamUnavailable(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	suggestion, err := f.svc.SuggestTeam(context.Background(), helpdesk, ticket.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestListTickets(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)
	_, err := f.svc.AssignTicket(context.Background(), helpdesk, ticket.ID, "IT_SUPPORT")
	require.NoError(t, err)
	f.createTicket(t)

	t.Run("requester sees own tickets", func(t *testing.T) {
		tickets, err := f.svc.ListTickets(context.Background(), requester, ListQuery{})
		require.NoError(t, err)
		assert.Len(t, tickets, 2)
	})

	t.Run("support sees team queue", func(t *testing.T) {
		tickets, err := f.svc.ListTickets(context.Background(), supportAgent("IT_SUPPORT"), ListQuery{})
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
	})

	t.Run("helpdesk narrows to unassigned", func(t *testing.T) {
		tickets, err := f.svc.ListTickets(context.Background(), helpdesk, ListQuery{UnassignedOnly: true})
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
	})

	t.Run("unknown status yields empty result", func(t *testing.T) {
		tickets, err := f.svc.ListTickets(context.Background(), helpdesk, ListQuery{RawStatuses: []string{"closed"}})
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})

	t.Run("status tokens are case-insensitive", func(t *testing.T) {
		tickets, err := f.svc.ListTickets(context.Background(), helpdesk, ListQuery{RawStatuses: []string{"assigned"}})
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
	})
}

func TestClampPagination(t *testing.T) {
	page, size := clampPagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = clampPagination(-3, 1000)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, size)

	page, size = clampPagination(4, 25)
	assert.Equal(t, 4, page)
	assert.Equal(t, 25, size)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, code, domainErr.Code)
}
