package service

import (
	"context"
	"errors"
	"fmt"

	"viralizaai-be/internal/config"
	"viralizaai-be/internal/dto"
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/repository/contract"
	"viralizaai-be/internal/repository/memory"
	"viralizaai-be/pkg/entitlement"
	"viralizaai-be/pkg/pix"
	"viralizaai-be/pkg/qrcode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 20

type IPaymentService interface {
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)
	GetTools(ctx context.Context) ([]*dto.ToolResponse, error)
	Checkout(ctx context.Context, principal entity.Principal, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	GetStatus(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.PaymentStatusResponse, error)
	ListPayments(ctx context.Context, principal entity.Principal, query dto.ListPaymentsQuery) ([]*dto.PaymentResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	MarkPaid(ctx context.Context, id uuid.UUID, transactionId string) (*dto.PaymentResponse, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*dto.PaymentResponse, error)
}

type paymentService struct {
	registry  IPaymentRegistry
	processor IConfirmationProcessor
	gateway   ICardCheckoutGateway
	matrix    *entitlement.Matrix
	renderer  *qrcode.Renderer
	cache     *memory.PaymentStatusCache
	pixCfg    config.PixConfig
	logger    logger.ILogger
}

func NewPaymentService(
	registry IPaymentRegistry,
	processor IConfirmationProcessor,
	gateway ICardCheckoutGateway,
	matrix *entitlement.Matrix,
	renderer *qrcode.Renderer,
	cache *memory.PaymentStatusCache,
	pixCfg config.PixConfig,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		registry:  registry,
		processor: processor,
		gateway:   gateway,
		matrix:    matrix,
		renderer:  renderer,
		cache:     cache,
		pixCfg:    pixCfg,
		logger:    log,
	}
}

func (s *paymentService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	offers := s.matrix.Plans()
	res := make([]*dto.PlanResponse, 0, len(offers))
	for _, offer := range offers {
		tools := s.matrix.Tools(offer.Tier)
		toolRes := make([]dto.ToolResponse, len(tools))
		for i, tool := range tools {
			toolRes[i] = dto.ToolResponse{Id: tool.Id, Name: tool.Name}
		}
		res = append(res, &dto.PlanResponse{
			Tier:         offer.Tier.String(),
			Name:         offer.Name,
			Price:        offer.Price.StringFixed(2),
			DurationDays: int(offer.Duration.Hours() / 24),
			Tools:        toolRes,
		})
	}
	return res, nil
}

// GetTools lists the tools that can be bought individually.
func (s *paymentService) GetTools(ctx context.Context) ([]*dto.ToolResponse, error) {
	var res []*dto.ToolResponse
	for _, tool := range s.matrix.Catalog() {
		if tool.Price.IsZero() {
			continue
		}
		res = append(res, &dto.ToolResponse{Id: tool.Id, Name: tool.Name, Price: tool.Price.StringFixed(2)})
	}
	return res, nil
}

func (s *paymentService) Checkout(ctx context.Context, principal entity.Principal, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	kind := entity.PaymentKind(req.Kind)
	method := entity.PaymentMethod(req.Method)

	itemName, amount, err := s.price(kind, req.ItemName, req.StrictTier)
	if err != nil {
		return nil, err
	}

	params := CreatePaymentParams{
		PayerId:    principal.UserId,
		PayerEmail: req.Email,
		Kind:       kind,
		ItemName:   itemName,
		Amount:     amount,
		Method:     method,
	}

	switch method {
	case entity.PaymentMethodInstantPayment:
		return s.checkoutInstant(ctx, params)
	case entity.PaymentMethodCard:
		return s.checkoutCard(ctx, params)
	default:
		return nil, &entity.ValidationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", req.Method)}
	}
}

// price resolves the catalog item behind a purchase request. Clients never
// choose the amount.
func (s *paymentService) price(kind entity.PaymentKind, itemName string, strictTier bool) (string, decimal.Decimal, error) {
	switch kind {
	case entity.PaymentKindPlan:
		tier, ok := entitlement.ParseTier(itemName)
		if !ok {
			if strictTier {
				return "", decimal.Zero, &entity.ValidationError{Field: "item_name", Message: fmt.Sprintf("unknown plan %q", itemName)}
			}
			s.logger.Warn("PaymentService", "Unknown plan name at checkout, pricing as monthly", map[string]interface{}{"item_name": itemName})
			tier = entitlement.TierMonthly
		}
		offer, found := s.matrix.Plan(tier)
		if !found {
			return "", decimal.Zero, &entity.ValidationError{Field: "item_name", Message: fmt.Sprintf("plan %q is not for sale", itemName)}
		}
		if ok {
			itemName = offer.Name
		}
		return itemName, offer.Price, nil

	case entity.PaymentKindTool:
		tool, ok := s.matrix.Lookup(itemName)
		if !ok {
			return "", decimal.Zero, &entity.ValidationError{Field: "item_name", Message: fmt.Sprintf("unknown tool %q", itemName)}
		}
		if tool.Price.IsZero() {
			return "", decimal.Zero, &entity.ValidationError{Field: "item_name", Message: fmt.Sprintf("tool %q is only available through plans", tool.Name)}
		}
		return tool.Name, tool.Price, nil
	}
	return "", decimal.Zero, &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("unsupported kind %q", kind)}
}

func (s *paymentService) checkoutInstant(ctx context.Context, params CreatePaymentParams) (*dto.CheckoutResponse, error) {
	txid := pix.NewTxID()

	// Build before registering so an unencodable request leaves no pending record.
	payload, err := pix.BuildPayload(pix.Params{
		Amount:               params.Amount,
		MerchantName:         s.pixCfg.MerchantName,
		MerchantCity:         s.pixCfg.MerchantCity,
		PaymentKey:           s.pixCfg.PaymentKey,
		Description:          params.ItemName,
		TxID:                 txid,
		MerchantCategoryCode: s.pixCfg.MerchantCategoryCode,
	})
	if err != nil {
		return nil, err
	}

	params.PixTxId = txid
	record, err := s.registry.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("PaymentService", "Instant payment registered", map[string]interface{}{
		"payment_id": record.Id,
		"txid":       txid,
		"amount":     record.Amount.StringFixed(2),
	})

	res := checkoutResponse(record)
	res.PixPayload = payload
	res.PixTxId = txid
	if s.renderer != nil {
		res.QRCodeURL = s.renderer.ImageURL(payload)
	}
	return res, nil
}

func (s *paymentService) checkoutCard(ctx context.Context, params CreatePaymentParams) (*dto.CheckoutResponse, error) {
	if s.gateway == nil {
		return nil, &entity.ValidationError{Field: "method", Message: "card payments are not available"}
	}

	record, err := s.registry.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	checkout, err := s.gateway.CreateCheckout(ctx, record)
	if err != nil {
		s.logger.Error("PaymentService", "Card checkout failed", map[string]interface{}{
			"payment_id": record.Id,
			"error":      err.Error(),
		})
		if _, failErr := s.processor.Fail(ctx, record.Id, "gateway: "+err.Error()); failErr != nil {
			s.logger.Error("PaymentService", "Failed to mark payment as failed", map[string]interface{}{
				"payment_id": record.Id,
				"error":      failErr.Error(),
			})
		}
		return nil, fmt.Errorf("card checkout failed: %w", err)
	}

	res := checkoutResponse(record)
	res.SnapToken = checkout.Token
	res.SnapRedirectUrl = checkout.RedirectURL
	return res, nil
}

// GetStatus is the polling endpoint. Payments belonging to someone else are
// reported as missing unless the caller is an admin.
func (s *paymentService) GetStatus(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.PaymentStatusResponse, error) {
	record, cached := s.cache.Get(id)
	if !cached {
		var err error
		record, err = s.registry.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cache.Save(record)
	}

	if record.PayerId != principal.UserId && !principal.IsAdmin() {
		return nil, &entity.NotFoundError{Resource: "payment", Id: id.String()}
	}

	res := &dto.PaymentStatusResponse{
		PaymentId:  record.Id,
		Status:     string(record.Status),
		Terminal:   record.Status.IsTerminal(),
		ValidUntil: record.ValidUntil,
	}
	if record.TransactionId != nil {
		res.TransactionId = *record.TransactionId
	}
	if record.FailureReason != nil {
		res.FailureReason = *record.FailureReason
	}
	return res, nil
}

// ListPayments shows admins every payment and everyone else their own.
func (s *paymentService) ListPayments(ctx context.Context, principal entity.Principal, query dto.ListPaymentsQuery) ([]*dto.PaymentResponse, error) {
	filter := contract.PaymentFilter{
		Status: entity.PaymentStatus(query.Status),
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if !principal.IsAdmin() {
		payer := principal.UserId
		filter.PayerId = &payer
	}

	records, err := s.registry.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.PaymentResponse, len(records))
	for i, r := range records {
		res[i] = paymentResponse(r)
	}
	return res, nil
}

// HandleNotification applies a card gateway webhook. Redeliveries are safe
// because terminal states are idempotent.
func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.gateway == nil || !s.gateway.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.logger.Warn("PaymentService", "Webhook signature mismatch", map[string]interface{}{"order_id": req.OrderId})
		return &entity.ValidationError{Field: "signature_key", Message: "invalid signature"}
	}

	id, err := uuid.Parse(req.OrderId)
	if err != nil {
		return &entity.ValidationError{Field: "order_id", Message: "invalid order id format"}
	}

	s.logger.Info("PaymentService", "Webhook received", map[string]interface{}{
		"order_id": req.OrderId,
		"status":   req.TransactionStatus,
		"fraud":    req.FraudStatus,
	})

	switch req.TransactionStatus {
	case "capture":
		if req.FraudStatus == "challenge" {
			return nil
		}
		_, err = s.processor.Confirm(ctx, id, transactionRef(req))
	case "settlement":
		_, err = s.processor.Confirm(ctx, id, transactionRef(req))
	case "deny", "cancel", "expire", "failure":
		_, err = s.processor.Fail(ctx, id, "gateway: "+req.TransactionStatus)
	case "pending":
		return nil
	default:
		s.logger.Warn("PaymentService", "Unknown webhook status, ignored", map[string]interface{}{"status": req.TransactionStatus})
		return nil
	}

	var invalid *entity.InvalidTransitionError
	if errors.As(err, &invalid) {
		s.logger.Warn("PaymentService", "Webhook conflicts with settled payment", map[string]interface{}{
			"order_id": req.OrderId,
			"from":     invalid.From,
			"to":       invalid.To,
		})
	}
	return err
}

func transactionRef(req *dto.MidtransWebhookRequest) string {
	if req.TransactionId != "" {
		return req.TransactionId
	}
	return req.OrderId
}

func (s *paymentService) MarkPaid(ctx context.Context, id uuid.UUID, transactionId string) (*dto.PaymentResponse, error) {
	record, err := s.processor.Confirm(ctx, id, transactionId)
	if err != nil {
		return nil, err
	}
	return paymentResponse(record), nil
}

func (s *paymentService) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*dto.PaymentResponse, error) {
	record, err := s.processor.Fail(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	return paymentResponse(record), nil
}

func checkoutResponse(r *entity.PaymentRecord) *dto.CheckoutResponse {
	return &dto.CheckoutResponse{
		PaymentId: r.Id,
		Status:    string(r.Status),
		ItemName:  r.ItemName,
		Amount:    r.Amount.StringFixed(2),
		Method:    string(r.Method),
	}
}

func paymentResponse(r *entity.PaymentRecord) *dto.PaymentResponse {
	res := &dto.PaymentResponse{
		Id:          r.Id,
		PayerId:     r.PayerId,
		Kind:        string(r.Kind),
		ItemName:    r.ItemName,
		Amount:      r.Amount.StringFixed(2),
		Method:      string(r.Method),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
		FailedAt:    r.FailedAt,
		ValidUntil:  r.ValidUntil,
	}
	if r.TransactionId != nil {
		res.TransactionId = *r.TransactionId
	}
	if r.FailureReason != nil {
		res.FailureReason = *r.FailureReason
	}
	return res
}
