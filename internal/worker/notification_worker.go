package worker

import (
	"go.uber.org/zap"

	"github.com/noryangjin/auction-server/internal/events"
	"github.com/noryangjin/auction-server/internal/service"
)

// StartNotificationWorker hooks account and listing notifications onto the event
// dispatcher and returns the event types it covers. Handlers run synchronously inside
// Publish, so there is no goroutine to stop.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) []events.EventType {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications == nil {
		logger.Warn("notification worker disabled: no notification service")
		return nil
	}
	subscribed := notifications.RegisterHandlers()
	if len(subscribed) == 0 {
		logger.Warn("notification worker subscribed to nothing; dispatcher missing")
		return nil
	}
	names := make([]string, 0, len(subscribed))
	for _, t := range subscribed {
		names = append(names, string(t))
	}
	logger.Info("notification worker started", zap.Strings("event_types", names))
	return subscribed
}
