package memory

import (
	"context"
	"fmt"
	"sort"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/repository/contract"

	"github.com/google/uuid"
)

type paymentRepository struct {
	uow *UnitOfWork
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.PaymentRecord) error {
	if payment.Id == uuid.Nil {
		payment.Id = uuid.New()
	}
	if r.uow.readPayment(payment.Id) != nil {
		return fmt.Errorf("payment %s already exists", payment.Id)
	}
	r.uow.writePayment(payment)
	return nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.PaymentRecord) error {
	if r.uow.readPayment(payment.Id) == nil {
		return fmt.Errorf("payment %s does not exist", payment.Id)
	}
	r.uow.writePayment(payment)
	return nil
}

func (r *paymentRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error) {
	return r.uow.readPayment(id), nil
}

// FindByIdForUpdate relies on the store-wide transaction lock taken in Begin.
func (r *paymentRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error) {
	return r.uow.readPayment(id), nil
}

func (r *paymentRepository) FindAll(ctx context.Context, filter contract.PaymentFilter) ([]*entity.PaymentRecord, error) {
	var out []*entity.PaymentRecord
	for _, p := range r.uow.allPayments() {
		if filter.PayerId != nil && p.PayerId != *filter.PayerId {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset >= len(out) {
		return []*entity.PaymentRecord{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}
