package worker

import (
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/events"
	"github.com/portkey-logistics/portkey/internal/service"
)

var notifiedEvents = []events.EventType{
	events.EventShipmentCreated,
	events.EventShipmentStatusChanged,
	events.EventShipmentDeleted,
	events.EventDocumentAttached,
	events.EventProfileRoleChanged,
	events.EventProfileDeleted,
}

// StartNotificationWorker subscribes the notification handlers to shipment
// and profile events. Handlers run inline on the publishing request; webhook
// delivery is handed off to a goroutine.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) {
	if dispatcher == nil || notifications == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	notifications.RegisterHandlers()

	fields := make([]zap.Field, 0, len(notifiedEvents))
	for _, t := range notifiedEvents {
		fields = append(fields, zap.Int(string(t), dispatcher.Subscribers(t)))
	}
	logger.Info("notification worker started", fields...)
}
