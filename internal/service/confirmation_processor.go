package service

import (
	"context"
	"fmt"
	"strings"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/repository/memory"
	"viralizaai-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IConfirmationProcessor is the only writer of PaymentRecord.Status.
//
// Pending moves to Completed or Failed. Confirming a Completed payment and
// failing a Failed one succeed without changes; the opposite moves return
// *entity.InvalidTransitionError and leave the record untouched. Each call
// runs in one transaction holding the payment row lock, so concurrent
// callers on the same id are serialized.
type IConfirmationProcessor interface {
	Confirm(ctx context.Context, id uuid.UUID, transactionId string) (*entity.PaymentRecord, error)
	Fail(ctx context.Context, id uuid.UUID, reason string) (*entity.PaymentRecord, error)
}

type confirmationProcessor struct {
	uowFactory unitofwork.RepositoryFactory
	registry   IPaymentRegistry
	grantor    IEntitlementGrantor
	expiry     IExpiryCalculator
	events     IPaymentEventPublisher
	cache      *memory.PaymentStatusCache
	clock      Clock
	logger     logger.ILogger
}

func NewConfirmationProcessor(
	uowFactory unitofwork.RepositoryFactory,
	registry IPaymentRegistry,
	grantor IEntitlementGrantor,
	expiry IExpiryCalculator,
	events IPaymentEventPublisher,
	cache *memory.PaymentStatusCache,
	clock Clock,
	log logger.ILogger,
) IConfirmationProcessor {
	return &confirmationProcessor{
		uowFactory: uowFactory,
		registry:   registry,
		grantor:    grantor,
		expiry:     expiry,
		events:     events,
		cache:      cache,
		clock:      clock.orDefault(),
		logger:     log,
	}
}

func (p *confirmationProcessor) Confirm(ctx context.Context, id uuid.UUID, transactionId string) (*entity.PaymentRecord, error) {
	transactionId = strings.TrimSpace(transactionId)
	if transactionId == "" {
		return nil, &entity.ValidationError{Field: "transaction_id", Message: "is required"}
	}

	var grants []*entity.ToolAccess
	record, changed, err := p.transition(ctx, id, entity.PaymentStatusCompleted, func(uow unitofwork.UnitOfWork, rec *entity.PaymentRecord) error {
		now := p.clock()
		rec.Status = entity.PaymentStatusCompleted
		rec.TransactionId = &transactionId
		rec.CompletedAt = &now
		if rec.Kind == entity.PaymentKindPlan {
			until := p.expiry.ExpiryFrom(now, p.expiry.ResolveTier(rec.ItemName))
			rec.ValidUntil = &until
		}

		if err := p.registry.Update(ctx, uow, rec); err != nil {
			return err
		}
		granted, err := p.grantor.Grant(ctx, uow, rec)
		if err != nil {
			return err
		}
		grants = granted
		return nil
	})
	if err != nil {
		return record, err
	}

	if changed {
		p.logger.Info("ConfirmationProcessor", "Payment completed", map[string]interface{}{
			"payment_id":     record.Id,
			"transaction_id": transactionId,
			"grants":         len(grants),
		})
		if p.events != nil {
			p.events.PaymentCompleted(ctx, record, grants)
		}
	}
	return record, nil
}

func (p *confirmationProcessor) Fail(ctx context.Context, id uuid.UUID, reason string) (*entity.PaymentRecord, error) {
	reason = strings.TrimSpace(reason)

	record, changed, err := p.transition(ctx, id, entity.PaymentStatusFailed, func(uow unitofwork.UnitOfWork, rec *entity.PaymentRecord) error {
		now := p.clock()
		rec.Status = entity.PaymentStatusFailed
		rec.FailedAt = &now
		if reason != "" {
			rec.FailureReason = &reason
		}
		return p.registry.Update(ctx, uow, rec)
	})
	if err != nil {
		return record, err
	}

	if changed {
		p.logger.Info("ConfirmationProcessor", "Payment failed", map[string]interface{}{
			"payment_id": record.Id,
			"reason":     reason,
		})
		if p.events != nil {
			p.events.PaymentFailed(ctx, record)
		}
	}
	return record, nil
}

// transition locks the payment, checks the move against the lifecycle and
// runs apply for real changes. changed is false for idempotent repeats.
func (p *confirmationProcessor) transition(
	ctx context.Context,
	id uuid.UUID,
	target entity.PaymentStatus,
	apply func(uow unitofwork.UnitOfWork, rec *entity.PaymentRecord) error,
) (*entity.PaymentRecord, bool, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rec, err := uow.PaymentRepository().FindByIdForUpdate(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock payment %s: %w", id, err)
	}
	if rec == nil {
		return nil, false, &entity.NotFoundError{Resource: "payment", Id: id.String()}
	}

	if !rec.Status.CanTransitionTo(target) {
		p.logger.Warn("ConfirmationProcessor", "Rejected status transition", map[string]interface{}{
			"payment_id": id,
			"from":       rec.Status,
			"to":         target,
		})
		return rec, false, &entity.InvalidTransitionError{PaymentId: id.String(), From: rec.Status, To: target}
	}

	if rec.Status == target {
		p.logger.Info("ConfirmationProcessor", "Payment already in target status", map[string]interface{}{
			"payment_id": id,
			"status":     target,
		})
		p.remember(rec)
		return rec, false, nil
	}

	if err := apply(uow, rec); err != nil {
		return nil, false, err
	}
	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit payment %s: %w", id, err)
	}

	p.remember(rec)
	return rec, true, nil
}

func (p *confirmationProcessor) remember(rec *entity.PaymentRecord) {
	p.cache.Save(rec)
}
