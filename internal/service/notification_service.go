package service

import (
	"context"
	"fmt"

	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/websocket"
	"viralizaai-be/pkg/events"
	pktNats "viralizaai-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery pushes real-time updates. Implemented by the websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, msg websocket.Message)
}

// EventSubscriber is the consuming side of pkg/nats.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

const PaymentStatusMessage = "payment_status"

// NotificationService relays payment outcomes from the bus to the payer's sockets.
type NotificationService struct {
	subscriber EventSubscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub EventSubscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start attaches one durable consumer per payment outcome.
func (s *NotificationService) Start(ctx context.Context) error {
	for _, eventType := range []string{events.PaymentCompleted, events.PaymentFailed} {
		durable := fmt.Sprintf("notif-%s", eventType)
		if err := s.subscriber.Subscribe(ctx, eventType, durable, s.HandleEvent); err != nil {
			s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
			return err
		}
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
	return nil
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	userID, err := uuid.Parse(events.String(event, "user_id"))
	if err != nil {
		// Retrying cannot fix a missing recipient.
		s.logger.Warn("NotificationService", "Event without a valid user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	data := map[string]interface{}{
		"payment_id": events.String(event, "payment_id"),
		"status":     events.String(event, "status"),
		"item_name":  events.String(event, "item_name"),
	}
	if reason := events.String(event, "reason"); reason != "" {
		data["reason"] = reason
	}
	if until, ok := event.Payload()["valid_until"]; ok && until != nil {
		data["valid_until"] = until
	}

	if s.delivery != nil {
		s.delivery.Send(userID, websocket.Message{Type: PaymentStatusMessage, Data: data})
	}
	s.logger.Info("NotificationService", "Payment status pushed", map[string]interface{}{
		"user_id": userID,
		"type":    event.EventType(),
	})
	return nil
}
