// Package worker attaches background consumers to the event dispatcher.
package worker

import (
	"go.uber.org/zap"

	"github.com/condohub/property-service/internal/service"
)

// StartNotificationWorker subscribes the registration audit handlers.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	if logger != nil {
		logger.Info("registration audit handlers subscribed")
	}
}
