package service

import (
	"context"
	"errors"
	"testing"

	"viralizaai-be/internal/config"
	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/pkg/pix"
	"viralizaai-be/pkg/qrcode"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

type fakeGateway struct {
	err     error
	created []*entity.PaymentRecord
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, record *entity.PaymentRecord) (*CardCheckout, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, record)
	return &CardCheckout{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/" + record.Id.String()}, nil
}

func (g *fakeGateway) VerifySignature(orderId, statusCode, grossAmount, signature string) bool {
	return Signature(orderId, statusCode, grossAmount, testServerKey) == signature
}

func newPaymentService(h *harness, gateway ICardCheckoutGateway) IPaymentService {
	pixCfg := config.PixConfig{
		MerchantName: "VIRALIZAAI",
		MerchantCity: "SAO PAULO",
		PaymentKey:   "pagamentos@viralizaai.com",
	}
	renderer := qrcode.NewRenderer("https://qr.example.com/create", 300, 300)
	return NewPaymentService(h.registry, h.processor, gateway, h.matrix, renderer, h.cache, pixCfg, logger.NewNop())
}

func TestCheckout_InstantPayment(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)
	payer := uuid.New()

	res, err := svc.Checkout(context.Background(), user(payer), &dto.CheckoutRequest{
		Kind:     "tool",
		ItemName: "ai funil builder",
		Method:   "pix",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "AI Funil Builder", res.ItemName)
	assert.Equal(t, "147.00", res.Amount)
	assert.True(t, len(res.PixPayload) > 6 && res.PixPayload[:6] == "000201")
	assert.Contains(t, res.QRCodeURL, "https://qr.example.com/create?")
	assert.NotEmpty(t, res.PixTxId)

	fields, err := pix.Parse(res.PixPayload)
	require.NoError(t, err)
	amount, ok := pix.Lookup(fields, pix.TagAmount)
	require.True(t, ok)
	assert.Equal(t, "147.00", amount)
	assert.NoError(t, pix.Verify(res.PixPayload))

	stored, err := h.registry.Get(context.Background(), res.PaymentId)
	require.NoError(t, err)
	assert.Equal(t, payer, stored.PayerId)
	require.NotNil(t, stored.PixTxId)
	assert.Equal(t, res.PixTxId, *stored.PixTxId)
}

func TestCheckout_PlanPricesFromCatalog(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)

	res, err := svc.Checkout(context.Background(), user(uuid.New()), &dto.CheckoutRequest{
		Kind: "plan", ItemName: "anual", Method: "pix",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plano Anual", res.ItemName)
	assert.Equal(t, "797.00", res.Amount)
}

func TestCheckout_Rejects(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CheckoutRequest
	}{
		{"unknown tool", dto.CheckoutRequest{Kind: "tool", ItemName: "Teleporter", Method: "pix"}},
		{"plan-only tool", dto.CheckoutRequest{Kind: "tool", ItemName: "Consultor IA", Method: "pix"}},
		{"strict unknown plan", dto.CheckoutRequest{Kind: "plan", ItemName: "Plano Vitalicio", Method: "pix", StrictTier: true}},
		{"card without gateway", dto.CheckoutRequest{Kind: "plan", ItemName: "mensal", Method: "card"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Checkout(ctx, user(uuid.New()), &tt.req)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestCheckout_UnknownPlanFallsBackToMonthly(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)

	res, err := svc.Checkout(context.Background(), user(uuid.New()), &dto.CheckoutRequest{
		Kind: "plan", ItemName: "Plano Vitalicio", Method: "pix",
	})
	require.NoError(t, err)
	assert.Equal(t, "97.00", res.Amount)
	assert.Equal(t, "Plano Vitalicio", res.ItemName)
}

func TestCheckout_Card(t *testing.T) {
	h := newHarness(t)
	gateway := &fakeGateway{}
	svc := newPaymentService(h, gateway)

	res, err := svc.Checkout(context.Background(), user(uuid.New()), &dto.CheckoutRequest{
		Kind: "plan", ItemName: "Plano Mensal", Method: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-token", res.SnapToken)
	assert.Empty(t, res.PixPayload)
	require.Len(t, gateway.created, 1)
	assert.Equal(t, res.PaymentId, gateway.created[0].Id)
}

func TestCheckout_CardGatewayErrorFailsPayment(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, &fakeGateway{err: errors.New("timeout")})
	payer := uuid.New()

	_, err := svc.Checkout(context.Background(), user(payer), &dto.CheckoutRequest{
		Kind: "plan", ItemName: "Plano Mensal", Method: "card",
	})
	require.Error(t, err)

	records, err := svc.ListPayments(context.Background(), user(payer), dto.ListPaymentsQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "failed", records[0].Status)
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)
	ctx := context.Background()
	payer := uuid.New()
	rec := h.create(t, payer, entity.PaymentKindPlan, "Plano Mensal", "97.00")

	res, err := svc.GetStatus(ctx, user(payer), rec.Id)
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.False(t, res.Terminal)

	_, err = svc.GetStatus(ctx, user(uuid.New()), rec.Id)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	admin := entity.Principal{UserId: uuid.New(), Role: entity.UserRoleAdmin}
	_, err = svc.GetStatus(ctx, admin, rec.Id)
	assert.NoError(t, err)

	_, err = h.processor.Confirm(ctx, rec.Id, "tx")
	require.NoError(t, err)
	res, err = svc.GetStatus(ctx, user(payer), rec.Id)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.True(t, res.Terminal)
	assert.Equal(t, "tx", res.TransactionId)
	assert.NotNil(t, res.ValidUntil)
}

func TestListPayments_ScopedToCaller(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	h.create(t, alice, entity.PaymentKindPlan, "Plano Mensal", "97.00")
	h.create(t, bob, entity.PaymentKindPlan, "Plano Anual", "797.00")

	mine, err := svc.ListPayments(ctx, user(alice), dto.ListPaymentsQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice, mine[0].PayerId)

	admin := entity.Principal{UserId: uuid.New(), Role: entity.UserRoleAdmin}
	all, err := svc.ListPayments(ctx, admin, dto.ListPaymentsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func notification(id uuid.UUID, status, fraud string) *dto.MidtransWebhookRequest {
	req := &dto.MidtransWebhookRequest{
		TransactionStatus: status,
		TransactionId:     "mt-" + id.String()[:8],
		OrderId:           id.String(),
		FraudStatus:       fraud,
		StatusCode:        "200",
		GrossAmount:       "97.00",
	}
	req.SignatureKey = Signature(req.OrderId, req.StatusCode, req.GrossAmount, testServerKey)
	return req
}

func TestHandleNotification(t *testing.T) {
	tests := []struct {
		name   string
		status string
		fraud  string
		want   entity.PaymentStatus
	}{
		{"settlement", "settlement", "", entity.PaymentStatusCompleted},
		{"capture accepted", "capture", "accept", entity.PaymentStatusCompleted},
		{"capture challenged", "capture", "challenge", entity.PaymentStatusPending},
		{"deny", "deny", "", entity.PaymentStatusFailed},
		{"expire", "expire", "", entity.PaymentStatusFailed},
		{"cancel", "cancel", "", entity.PaymentStatusFailed},
		{"pending", "pending", "", entity.PaymentStatusPending},
		{"unknown", "refund", "", entity.PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			svc := newPaymentService(h, &fakeGateway{})
			rec := h.create(t, uuid.New(), entity.PaymentKindPlan, "Plano Mensal", "97.00")

			require.NoError(t, svc.HandleNotification(context.Background(), notification(rec.Id, tt.status, tt.fraud)))

			stored, err := h.registry.Get(context.Background(), rec.Id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Status)
		})
	}
}

func TestHandleNotification_Redelivery(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, &fakeGateway{})
	ctx := context.Background()
	rec := h.create(t, uuid.New(), entity.PaymentKindPlan, "Plano Mensal", "97.00")

	req := notification(rec.Id, "settlement", "")
	require.NoError(t, svc.HandleNotification(ctx, req))
	require.NoError(t, svc.HandleNotification(ctx, req))

	completed, _ := h.events.counts()
	assert.Equal(t, 1, completed)

	// A late failure for a settled payment is a conflict, not a change.
	err := svc.HandleNotification(ctx, notification(rec.Id, "expire", ""))
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}

func TestHandleNotification_BadSignature(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, &fakeGateway{})
	rec := h.create(t, uuid.New(), entity.PaymentKindPlan, "Plano Mensal", "97.00")

	req := notification(rec.Id, "settlement", "")
	req.GrossAmount = "1.00"
	err := svc.HandleNotification(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrValidation)

	stored, err := h.registry.Get(context.Background(), rec.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status)
}

func TestMarkPaidAndFailed(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)
	ctx := context.Background()

	paid := h.create(t, uuid.New(), entity.PaymentKindTool, "Gerador de QR Code", "47.00")
	res, err := svc.MarkPaid(ctx, paid.Id, "E2E-123")
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, "E2E-123", res.TransactionId)

	_, err = svc.MarkFailed(ctx, paid.Id, "card_declined")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	other := h.create(t, uuid.New(), entity.PaymentKindTool, "Gerador de QR Code", "47.00")
	res, err = svc.MarkFailed(ctx, other.Id, "no funds")
	require.NoError(t, err)
	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "no funds", res.FailureReason)
}

func TestCatalog(t *testing.T) {
	h := newHarness(t)
	svc := newPaymentService(h, nil)

	plans, err := svc.GetPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 4)
	assert.Equal(t, "monthly", plans[0].Tier)
	assert.Equal(t, 30, plans[0].DurationDays)
	assert.Equal(t, 365, plans[3].DurationDays)
	assert.Greater(t, len(plans[3].Tools), len(plans[0].Tools))

	tools, err := svc.GetTools(context.Background())
	require.NoError(t, err)
	for _, tool := range tools {
		assert.NotEqual(t, "0.00", tool.Price)
	}
}
