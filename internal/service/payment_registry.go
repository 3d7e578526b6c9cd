package service

import (
	"context"
	"fmt"
	"strings"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/repository/contract"
	"viralizaai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePaymentParams struct {
	PayerId    uuid.UUID
	PayerEmail string
	Kind       entity.PaymentKind
	ItemName   string
	Amount     decimal.Decimal
	Method     entity.PaymentMethod
	PixTxId    string
	Metadata   map[string]interface{}
}

// IPaymentRegistry is the persistence boundary for payment records.
// Update is reserved for the confirmation processor.
type IPaymentRegistry interface {
	Create(ctx context.Context, params CreatePaymentParams) (*entity.PaymentRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error)
	Update(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.PaymentRecord) error
	List(ctx context.Context, filter contract.PaymentFilter) ([]*entity.PaymentRecord, error)
}

type paymentRegistry struct {
	uowFactory unitofwork.RepositoryFactory
	clock      Clock
}

func NewPaymentRegistry(uowFactory unitofwork.RepositoryFactory, clock Clock) IPaymentRegistry {
	return &paymentRegistry{uowFactory: uowFactory, clock: clock.orDefault()}
}

func (r *paymentRegistry) Create(ctx context.Context, params CreatePaymentParams) (*entity.PaymentRecord, error) {
	if err := validateCreateParams(params); err != nil {
		return nil, err
	}

	now := r.clock()
	record := &entity.PaymentRecord{
		Id:         uuid.New(),
		PayerId:    params.PayerId,
		PayerEmail: params.PayerEmail,
		Kind:       params.Kind,
		ItemName:   strings.TrimSpace(params.ItemName),
		Amount:     params.Amount.Round(2),
		Method:     params.Method,
		Status:     entity.PaymentStatusPending,
		Metadata:   params.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if params.PixTxId != "" {
		txid := params.PixTxId
		record.PixTxId = &txid
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PaymentRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return record, nil
}

func validateCreateParams(p CreatePaymentParams) error {
	switch {
	case p.PayerId == uuid.Nil:
		return &entity.ValidationError{Field: "payer_id", Message: "is required"}
	case !p.Kind.Valid():
		return &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("unsupported kind %q", p.Kind)}
	case strings.TrimSpace(p.ItemName) == "":
		return &entity.ValidationError{Field: "item_name", Message: "is required"}
	case !p.Amount.IsPositive():
		return &entity.ValidationError{Field: "amount", Message: "must be greater than zero"}
	case !p.Amount.Equal(p.Amount.Round(2)):
		return &entity.ValidationError{Field: "amount", Message: "must have at most two decimal places"}
	case !p.Method.Valid():
		return &entity.ValidationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", p.Method)}
	}
	return nil
}

func (r *paymentRegistry) Get(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.PaymentRepository().FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %s: %w", id, err)
	}
	if record == nil {
		return nil, &entity.NotFoundError{Resource: "payment", Id: id.String()}
	}
	return record, nil
}

func (r *paymentRegistry) Update(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.PaymentRecord) error {
	record.UpdatedAt = r.clock()
	if err := uow.PaymentRepository().Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update payment %s: %w", record.Id, err)
	}
	return nil
}

func (r *paymentRegistry) List(ctx context.Context, filter contract.PaymentFilter) ([]*entity.PaymentRecord, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.PaymentRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return records, nil
}
