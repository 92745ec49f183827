package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Client talks to the external intelligence API that owns team suggestion,
// solution suggestion, and similarity search. Every response here is advisory:
// the client never mutates local ticket state, and any remote failure (non-2xx,
// timeout, malformed body) degrades to "no suggestion" instead of an error.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	defaultTopK int
}

// NewClient constructs the client with a per-call timeout.
func NewClient(cfg config.IntelligenceConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
		logger:      logger,
		defaultTopK: cfg.DefaultTopK,
	}
}

// DefaultTopK returns the configured top_k for suggestion calls.
func (c *Client) DefaultTopK() int {
	if c.defaultTopK <= 0 {
		return 5
	}
	return c.defaultTopK
}

// TeamSuggestion is the remote /assign response.
type TeamSuggestion struct {
	TicketID         int    `json:"ticket_id"`
	AssignedTeamID   string `json:"assigned_team_id"`
	AssignedTeamName string `json:"assigned_team_name"`
	Reasoning        string `json:"reasoning"`
	Persisted        bool   `json:"persisted"`
	Message          string `json:"message"`
}

// SolutionSource ranks a prior ticket backing a suggested solution.
type SolutionSource struct {
	TicketID int      `json:"ticket_id"`
	Title    *string  `json:"title"`
	Score    *float64 `json:"score"`
}

// SolutionSuggestion is the remote /solution response.
type SolutionSuggestion struct {
	TicketID  int              `json:"ticket_id"`
	Solution  *string          `json:"solution"`
	Sources   []SolutionSource `json:"sources"`
	Persisted bool             `json:"persisted"`
	Message   *string          `json:"message"`
}

// SimilarTicket is one ranked result from /similar.
type SimilarTicket struct {
	TicketID         int     `json:"ticket_id"`
	Score            float64 `json:"score"`
	Title            *string `json:"title"`
	Answer           *string `json:"answer"`
	AssignedTeamName *string `json:"assigned_team_name"`
}

type similarResponse struct {
	Results []SimilarTicket `json:"results"`
}

// suggestionRequest is the shared body for advisory calls.
type suggestionRequest struct {
	TicketID int `json:"ticket_id"`
	TopK     int `json:"top_k"`
}

// IndexTicketRequest forwards a freshly created ticket to the remote corpus
// so similarity search stays current.
type IndexTicketRequest struct {
	TicketID    int       `json:"ticket_id"`
	RequesterID int       `json:"requester_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// notificationRequest is the body for all /notify endpoints.
type notificationRequest struct {
	TicketID  int    `json:"ticket_id"`
	Recipient string `json:"recipient"`
	UserName  string `json:"user_name"`
}

// SuggestTeam asks the remote service which team should own the ticket.
// A nil suggestion with nil error means no suggestion is available.
func (c *Client) SuggestTeam(ctx context.Context, ticketID, topK int) (*TeamSuggestion, error) {
	var out TeamSuggestion
	if !c.postJSON(ctx, "/assign", suggestionRequest{TicketID: ticketID, TopK: topK}, &out) {
		return nil, nil
	}
	return &out, nil
}

// SuggestSolution asks the remote service for a drafted answer.
func (c *Client) SuggestSolution(ctx context.Context, ticketID, topK int) (*SolutionSuggestion, error) {
	var out SolutionSuggestion
	if !c.postJSON(ctx, "/solution", suggestionRequest{TicketID: ticketID, TopK: topK}, &out) {
		return nil, nil
	}
	return &out, nil
}

// FindSimilar returns ranked similar tickets, or nil when unavailable.
func (c *Client) FindSimilar(ctx context.Context, ticketID, topK int) ([]SimilarTicket, error) {
	var out similarResponse
	if !c.postJSON(ctx, "/similar", suggestionRequest{TicketID: ticketID, TopK: topK}, &out) {
		return nil, nil
	}
	return out.Results, nil
}

// IndexTicket forwards a new ticket for remote embedding. Best effort.
func (c *Client) IndexTicket(ctx context.Context, req IndexTicketRequest) bool {
	return c.postJSON(ctx, "/tickets", req, nil)
}

// NotifyTicketAssignedUser tells the requester their ticket was routed.
func (c *Client) NotifyTicketAssignedUser(ctx context.Context, ticketID int, recipient, userName string) bool {
	return c.notify(ctx, "/notify/ticket-assigned/user", ticketID, recipient, userName)
}

// NotifyTicketAssignedTeam tells the team a ticket landed in their queue.
func (c *Client) NotifyTicketAssignedTeam(ctx context.Context, ticketID int, recipient, userName string) bool {
	return c.notify(ctx, "/notify/ticket-assigned/team", ticketID, recipient, userName)
}

// NotifyTicketResolved tells the requester their ticket was answered.
func (c *Client) NotifyTicketResolved(ctx context.Context, ticketID int, recipient, userName string) bool {
	return c.notify(ctx, "/notify/ticket-resolved", ticketID, recipient, userName)
}

// NotifyTicketCanceled tells the requester their ticket was canceled.
func (c *Client) NotifyTicketCanceled(ctx context.Context, ticketID int, recipient, userName string) bool {
	return c.notify(ctx, "/notify/ticket-canceled", ticketID, recipient, userName)
}

func (c *Client) notify(ctx context.Context, endpoint string, ticketID int, recipient, userName string) bool {
	req := notificationRequest{TicketID: ticketID, Recipient: recipient, UserName: userName}
	ok := c.postJSON(ctx, endpoint, req, nil)
	if !ok {
		c.logger.Warn("notification delivery failed",
			zap.String("endpoint", endpoint),
			zap.Int("ticket_id", ticketID))
	}
	return ok
}

// postJSON posts the body and decodes into out when provided. Returns false
// on any transport, status, or decode failure.
func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) bool {
	payload, err := json.Marshal(body)
	if err != nil {
		c.logger.Warn("intelligence request encode failed", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn("intelligence request build failed", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("intelligence call failed", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("intelligence call returned non-success",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return false
	}

	if out == nil {
		return true
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("intelligence response decode failed", zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	return true
}
