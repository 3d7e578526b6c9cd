package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu       sync.Mutex
	err      error
	receipts []mailer.Receipt
}

func (m *recordingMailer) SendPaymentReceipt(receipt mailer.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, receipt)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.receipts)
}

func TestConsumerService_SendsReceiptAfterConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	mail := &recordingMailer{}
	consumer := NewConsumerService(pubSub, "receipts", h.registry, mail, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	// Wire the real event publisher so the job goes through the queue.
	events := NewPaymentEventPublisher(nil, NewPublisherService("receipts", pubSub), logger.NewNop())
	processor := NewConfirmationProcessor(h.factory, h.registry, h.grantor, h.expiry, events, h.cache, h.clock.Now, logger.NewNop())

	rec, err := h.registry.Create(ctx, CreatePaymentParams{
		PayerId:    uuid.New(),
		PayerEmail: "buyer@example.com",
		Kind:       entity.PaymentKindPlan,
		ItemName:   "Plano Anual",
		Amount:     decimal.RequireFromString("797.00"),
		Method:     entity.PaymentMethodInstantPayment,
	})
	require.NoError(t, err)
	_, err = processor.Confirm(ctx, rec.Id, "E2E-1")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return mail.count() == 1 }, time.Second, 10*time.Millisecond)
	got := mail.receipts[0]
	assert.Equal(t, "buyer@example.com", got.ToEmail)
	assert.Equal(t, "797.00", got.Amount)
	assert.Equal(t, "E2E-1", got.TransactionId)
	assert.Equal(t, baseTime.AddDate(0, 0, 365).Format("02/01/2006"), got.ValidUntil)
}

func TestConsumerService_AcksUnprocessableJobs(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	mail := &recordingMailer{err: errors.New("smtp down")}
	consumer := NewConsumerService(pubSub, "receipts", h.registry, mail, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	pending := h.create(t, uuid.New(), entity.PaymentKindPlan, "Plano Mensal", "97.00")
	unknown, _ := json.Marshal(dto.PaymentReceiptMessage{PaymentId: uuid.New()})
	notDone, _ := json.Marshal(dto.PaymentReceiptMessage{PaymentId: pending.Id})

	// Publish blocks until the consumer acks, so a nack would hang here.
	for _, payload := range [][]byte{[]byte("{not json"), unknown, notDone} {
		require.NoError(t, pubSub.Publish("receipts", message.NewMessage(watermill.NewUUID(), payload)))
	}
	assert.Zero(t, mail.count())
}
