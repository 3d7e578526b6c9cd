package service

import (
	"context"
	"fmt"
	"time"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/repository/unitofwork"
	"viralizaai-be/pkg/entitlement"
)

// IEntitlementGrantor turns a completed payment into tool access rows.
// It runs inside the caller's transaction and is safe to repeat.
type IEntitlementGrantor interface {
	Grant(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.PaymentRecord) ([]*entity.ToolAccess, error)
}

type entitlementGrantor struct {
	matrix *entitlement.Matrix
	expiry IExpiryCalculator
	clock  Clock
	logger logger.ILogger
}

func NewEntitlementGrantor(matrix *entitlement.Matrix, expiry IExpiryCalculator, clock Clock, log logger.ILogger) IEntitlementGrantor {
	return &entitlementGrantor{
		matrix: matrix,
		expiry: expiry,
		clock:  clock.orDefault(),
		logger: log,
	}
}

func (g *entitlementGrantor) Grant(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.PaymentRecord) ([]*entity.ToolAccess, error) {
	if record.Status != entity.PaymentStatusCompleted {
		return nil, fmt.Errorf("cannot grant entitlements for payment %s in status %s", record.Id, record.Status)
	}

	var grants []*entity.ToolAccess
	switch record.Kind {
	case entity.PaymentKindPlan:
		grants = g.planGrants(record)
	case entity.PaymentKindTool:
		grants = []*entity.ToolAccess{g.toolGrant(record)}
	default:
		return nil, &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("unsupported kind %q", record.Kind)}
	}

	repo := uow.ToolAccessRepository()
	for _, grant := range grants {
		if err := repo.Upsert(ctx, grant); err != nil {
			return nil, fmt.Errorf("failed to grant %s to %s: %w", grant.ToolId, record.PayerId, err)
		}
	}

	g.logger.Info("EntitlementGrantor", "Entitlements granted", map[string]interface{}{
		"payment_id": record.Id,
		"payer_id":   record.PayerId,
		"kind":       record.Kind,
		"count":      len(grants),
	})
	return grants, nil
}

func (g *entitlementGrantor) planGrants(record *entity.PaymentRecord) []*entity.ToolAccess {
	now := g.clock()
	tier := g.expiry.ResolveTier(record.ItemName)

	expiresAt := record.ValidUntil
	if expiresAt == nil {
		until := g.expiry.ExpiryFrom(now, tier)
		expiresAt = &until
	}

	tools := g.matrix.Tools(tier)
	grants := make([]*entity.ToolAccess, 0, len(tools))
	for _, tool := range tools {
		exp := *expiresAt
		grants = append(grants, g.newGrant(record, tool.Id, tool.Name, entity.AccessTypePlan, &exp, now))
	}
	return grants
}

func (g *entitlementGrantor) toolGrant(record *entity.PaymentRecord) *entity.ToolAccess {
	now := g.clock()
	name := record.ItemName
	toolId := entitlement.ToolID(name)
	if tool, ok := g.matrix.Lookup(name); ok {
		name, toolId = tool.Name, tool.Id
	}
	return g.newGrant(record, toolId, name, entity.AccessTypeIndividual, nil, now)
}

func (g *entitlementGrantor) newGrant(record *entity.PaymentRecord, toolId, toolName string, accessType entity.AccessType, expiresAt *time.Time, now time.Time) *entity.ToolAccess {
	source := record.Id
	return &entity.ToolAccess{
		PrincipalId:     record.PayerId,
		ToolId:          toolId,
		ToolName:        toolName,
		HasAccess:       true,
		AccessType:      accessType,
		ExpiresAt:       expiresAt,
		SourcePaymentId: &source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
