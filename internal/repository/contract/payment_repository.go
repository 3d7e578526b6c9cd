package contract

import (
	"context"

	"viralizaai-be/internal/entity"

	"github.com/google/uuid"
)

type PaymentFilter struct {
	PayerId *uuid.UUID
	Status  entity.PaymentStatus
	Limit   int
	Offset  int
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.PaymentRecord) error
	Update(ctx context.Context, payment *entity.PaymentRecord) error
	// FindById returns nil, nil when no record matches.
	FindById(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error)
	// FindByIdForUpdate locks the row until the surrounding transaction ends.
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]*entity.PaymentRecord, error)
}
