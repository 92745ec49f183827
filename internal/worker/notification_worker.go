package worker

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker wires the notification service into the dispatcher
// and starts its delivery goroutines. Delivery stops when ctx is canceled.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, dispatcher events.Dispatcher, workers int) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers(dispatcher)
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go notifications.Run(ctx)
	}
}
