package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Notifier delivers notifications through the external intelligence API.
// Every method is best effort and reports delivery success only.
type Notifier interface {
	NotifyTicketAssignedUser(ctx context.Context, ticketID int, recipient, userName string) bool
	NotifyTicketAssignedTeam(ctx context.Context, ticketID int, recipient, userName string) bool
	NotifyTicketResolved(ctx context.Context, ticketID int, recipient, userName string) bool
	NotifyTicketCanceled(ctx context.Context, ticketID int, recipient, userName string) bool
}

type notificationKind int

const (
	notifyAssignedUser notificationKind = iota
	notifyAssignedTeam
	notifyResolved
	notifyCanceled
)

type notificationJob struct {
	kind      notificationKind
	ticketID  int
	recipient string
	userName  string
}

// NotificationService turns lifecycle events into outbound notifications.
// Handlers only enqueue; delivery happens on worker goroutines so a slow or
// failing remote call never delays the transition that triggered it.
type NotificationService struct {
	notifier Notifier
	logger   *zap.Logger
	jobs     chan notificationJob
}

// NewNotificationService creates the service with a bounded delivery queue.
func NewNotificationService(notifier Notifier, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifier: notifier,
		logger:   logger,
		jobs:     make(chan notificationJob, 64),
	}
}

// RegisterHandlers subscribes to the lifecycle events that notify someone.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
	dispatcher.Subscribe(events.EventTicketCanceled, n.handleTicketCanceled)
}

// Run delivers queued notifications until the context is canceled. Intended
// to run on one or more worker goroutines.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-n.jobs:
			n.deliver(ctx, job)
		}
	}
}

func (n *NotificationService) handleTicketAssigned(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for assigned event", zap.Int("ticket_id", event.TicketID))
		return nil
	}
	if payload.RequesterEmail != "" {
		n.enqueue(notificationJob{
			kind:      notifyAssignedUser,
			ticketID:  event.TicketID,
			recipient: payload.RequesterEmail,
			userName:  payload.RequesterName,
		})
	}
	if payload.TeamEmail != "" {
		n.enqueue(notificationJob{
			kind:      notifyAssignedTeam,
			ticketID:  event.TicketID,
			recipient: payload.TeamEmail,
			userName:  payload.TeamName,
		})
	}
	return nil
}

func (n *NotificationService) handleTicketResolved(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for resolved event", zap.Int("ticket_id", event.TicketID))
		return nil
	}
	if payload.RequesterEmail != "" {
		n.enqueue(notificationJob{
			kind:      notifyResolved,
			ticketID:  event.TicketID,
			recipient: payload.RequesterEmail,
			userName:  payload.RequesterName,
		})
	}
	return nil
}

func (n *NotificationService) handleTicketCanceled(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCanceledPayload)
	if !ok {
		n.logger.Warn("unexpected payload for canceled event", zap.Int("ticket_id", event.TicketID))
		return nil
	}
	if payload.RequesterEmail != "" {
		n.enqueue(notificationJob{
			kind:      notifyCanceled,
			ticketID:  event.TicketID,
			recipient: payload.RequesterEmail,
			userName:  payload.RequesterName,
		})
	}
	return nil
}

// enqueue never blocks. A full queue drops the notification with a warning;
// notifications are best effort and must not back-pressure the request path.
func (n *NotificationService) enqueue(job notificationJob) {
	select {
	case n.jobs <- job:
	default:
		n.logger.Warn("notification queue full, dropping",
			zap.Int("ticket_id", job.ticketID),
			zap.String("recipient", job.recipient))
	}
}

func (n *NotificationService) deliver(ctx context.Context, job notificationJob) {
	if n.notifier == nil {
		return
	}
	switch job.kind {
	case notifyAssignedUser:
		n.notifier.NotifyTicketAssignedUser(ctx, job.ticketID, job.recipient, job.userName)
	case notifyAssignedTeam:
		n.notifier.NotifyTicketAssignedTeam(ctx, job.ticketID, job.recipient, job.userName)
	case notifyResolved:
		n.notifier.NotifyTicketResolved(ctx, job.ticketID, job.recipient, job.userName)
	case notifyCanceled:
		n.notifier.NotifyTicketCanceled(ctx, job.ticketID, job.recipient, job.userName)
	}
}
