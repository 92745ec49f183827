package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "INPROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusCanceled   TicketStatus = "CANCELED"
)

// ParseTicketStatus normalizes a raw status token to its canonical form.
// Matching is case-insensitive; unknown tokens are rejected.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case TicketStatusOpen:
		return TicketStatusOpen, true
	case TicketStatusAssigned:
		return TicketStatusAssigned, true
	case TicketStatusInProgress:
		return TicketStatusInProgress, true
	case TicketStatusResolved:
		return TicketStatusResolved, true
	case TicketStatusCanceled:
		return TicketStatusCanceled, true
	}
	return "", false
}

// IsTerminal reports whether no further transitions are allowed.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusCanceled
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusAssigned, TicketStatusCanceled},
	TicketStatusAssigned:   {TicketStatusInProgress, TicketStatusCanceled},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusCanceled},
	TicketStatusResolved:   {},
	TicketStatusCanceled:   {},
}

// CanTransition reports whether the edge current->next exists in the lifecycle.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// NonTerminalStatuses returns every state from which cancel is still legal.
func NonTerminalStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress}
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ParseTicketPriority normalizes a priority token, defaulting to MEDIUM.
func ParseTicketPriority(raw string) TicketPriority {
	switch TicketPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case TicketPriorityLow:
		return TicketPriorityLow
	case TicketPriorityHigh:
		return TicketPriorityHigh
	default:
		return TicketPriorityMedium
	}
}

// MaxTicketTags caps the free-form tags stored per ticket.
const MaxTicketTags = 8

// Ticket is the aggregate for help-desk requests.
type Ticket struct {
	ID              int
	RequesterID     int
	Subject         string
	Body            string
	Answer          *string
	SuggestedAnswer *string
	Type            string
	Priority        TicketPriority
	AssignedTeamID  *string
	SuggestedTeamID *string
	Status          TicketStatus
	Tags            []string
	CreatedAt       time.Time
}

// TicketEmbedding is a text chunk owned by a ticket. The vector itself is
// computed and consumed by the remote similarity service; this application
// only stores and forwards the chunk text.
type TicketEmbedding struct {
	ID        int
	TicketID  int
	ChunkText string
}
