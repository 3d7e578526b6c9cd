package unitofwork

import (
	"context"

	"viralizaai-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PaymentRepository() contract.PaymentRepository
	ToolAccessRepository() contract.ToolAccessRepository
}
