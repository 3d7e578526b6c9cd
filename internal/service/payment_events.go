package service

import (
	"context"
	"encoding/json"

	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/pkg/events"
)

// EventPublisher is the bus side of pkg/nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// IPaymentEventPublisher announces settled payments. Failures are logged and
// never undo the transition that already committed.
type IPaymentEventPublisher interface {
	PaymentCompleted(ctx context.Context, record *entity.PaymentRecord, grants []*entity.ToolAccess)
	PaymentFailed(ctx context.Context, record *entity.PaymentRecord)
}

type paymentEventPublisher struct {
	bus    EventPublisher
	jobs   IPublisherService
	logger logger.ILogger
}

// NewPaymentEventPublisher accepts nil for either sink.
func NewPaymentEventPublisher(bus EventPublisher, jobs IPublisherService, log logger.ILogger) IPaymentEventPublisher {
	return &paymentEventPublisher{bus: bus, jobs: jobs, logger: log}
}

func (p *paymentEventPublisher) PaymentCompleted(ctx context.Context, record *entity.PaymentRecord, grants []*entity.ToolAccess) {
	data := paymentEventData(record)
	if record.TransactionId != nil {
		data["transaction_id"] = *record.TransactionId
	}
	if record.ValidUntil != nil {
		data["valid_until"] = record.ValidUntil
	}
	p.publish(ctx, events.New(events.PaymentCompleted, data))

	for _, grant := range grants {
		p.publish(ctx, events.New(events.EntitlementGranted, map[string]interface{}{
			"user_id":     grant.PrincipalId.String(),
			"payment_id":  record.Id.String(),
			"tool_id":     grant.ToolId,
			"access_type": string(grant.AccessType),
			"expires_at":  grant.ExpiresAt,
		}))
	}

	if p.jobs != nil && record.PayerEmail != "" {
		payload, _ := json.Marshal(dto.PaymentReceiptMessage{PaymentId: record.Id})
		if err := p.jobs.Publish(ctx, payload); err != nil {
			p.logger.Error("PaymentEvents", "Failed to queue payment receipt", map[string]interface{}{
				"payment_id": record.Id,
				"error":      err.Error(),
			})
		}
	}
}

func (p *paymentEventPublisher) PaymentFailed(ctx context.Context, record *entity.PaymentRecord) {
	data := paymentEventData(record)
	if record.FailureReason != nil {
		data["reason"] = *record.FailureReason
	}
	p.publish(ctx, events.New(events.PaymentFailed, data))
}

func (p *paymentEventPublisher) publish(ctx context.Context, evt events.BaseEvent) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("PaymentEvents", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}

func paymentEventData(record *entity.PaymentRecord) map[string]interface{} {
	return map[string]interface{}{
		"payment_id": record.Id.String(),
		"user_id":    record.PayerId.String(),
		"kind":       string(record.Kind),
		"item_name":  record.ItemName,
		"amount":     record.Amount.StringFixed(2),
		"method":     string(record.Method),
		"status":     string(record.Status),
	}
}
