package service

import (
	"context"
	"encoding/json"

	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService sends purchase receipts queued by the payment event publisher.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	registry   IPaymentRegistry
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	registry IPaymentRegistry,
	mailer mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		registry:   registry,
		mailer:     mailer,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PaymentReceiptMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal receipt job", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Malformed jobs are never retried.
		return
	}

	record, err := cs.registry.Get(ctx, payload.PaymentId)
	if err != nil {
		if entity.IsNotFound(err) {
			cs.logger.Warn("ConsumerService", "Receipt for unknown payment", map[string]interface{}{"payment_id": payload.PaymentId})
			msg.Ack()
			return
		}
		cs.logger.Error("ConsumerService", "Failed to load payment", map[string]interface{}{"payment_id": payload.PaymentId, "error": err.Error()})
		msg.Nack()
		return
	}
	if record.Status != entity.PaymentStatusCompleted || record.PayerEmail == "" {
		msg.Ack()
		return
	}

	receipt := mailer.Receipt{
		ToEmail:   record.PayerEmail,
		PaymentId: record.Id.String(),
		ItemName:  record.ItemName,
		Amount:    record.Amount.StringFixed(2),
	}
	if record.TransactionId != nil {
		receipt.TransactionId = *record.TransactionId
	}
	if record.ValidUntil != nil {
		receipt.ValidUntil = record.ValidUntil.Format("02/01/2006")
	}

	if err := cs.mailer.SendPaymentReceipt(receipt); err != nil {
		// gochannel redelivers a nack at once, so an SMTP outage would spin here.
		cs.logger.Error("ConsumerService", "Failed to send receipt, dropping job", map[string]interface{}{"payment_id": record.Id, "error": err.Error()})
		msg.Ack()
		return
	}

	cs.logger.Info("ConsumerService", "Receipt sent", map[string]interface{}{"payment_id": record.Id})
	msg.Ack()
}
