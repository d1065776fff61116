package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/condohub/property-service/internal/events"
)

// NotificationService writes an audit trail for registration events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationKeyIssued, n.handleKeyIssued)
	n.dispatcher.Subscribe(events.EventUnitRegistered, n.handleUnitRegistered)
	n.dispatcher.Subscribe(events.EventRegistrationKeyDeactivated, n.handleKeyDeactivated)
}

func (n *NotificationService) handleKeyIssued(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.RegistrationKeyIssuedPayload); ok {
		fields = append(fields,
			zap.Int64("company_id", payload.CompanyID),
			zap.Int64("occupant_id", payload.OccupantID),
			zap.Bool("is_owner", payload.IsOwner),
			zap.Bool("notified", payload.Notified))
	}
	n.logger.Info("RegistrationKeyIssued", fields...)
	return nil
}

func (n *NotificationService) handleUnitRegistered(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.UnitRegisteredPayload); ok {
		fields = append(fields,
			zap.Int64("occupant_id", payload.OccupantID),
			zap.Bool("is_owner", payload.IsOwner))
	}
	n.logger.Info("UnitRegistered", fields...)
	return nil
}

func (n *NotificationService) handleKeyDeactivated(_ context.Context, event events.Event) error {
	n.logger.Info("RegistrationKeyDeactivated", eventFields(event)...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("kind", event.Kind.String()),
		zap.Int64("unit_id", event.UnitID),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.Actor.UserID != nil {
		fields = append(fields, zap.Int64("actor_id", *event.Actor.UserID), zap.String("actor_role", string(event.Actor.Role)))
	}
	return fields
}
