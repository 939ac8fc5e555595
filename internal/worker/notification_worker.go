package worker

import (
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

// StartNotificationWorker subscribes the notification emitter to lifecycle
// events.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil || dispatcher == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
