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

// IAccessService answers entitlement questions. Expired grants count as
// absent even before the purger has cleared them.
type IAccessService interface {
	HasAccess(ctx context.Context, principal entity.Principal, toolName string) (bool, error)
	ListAccess(ctx context.Context, principal entity.Principal) ([]*entity.ToolAccess, error)
	PurgeExpired(ctx context.Context) (int64, error)
	RunPurger(ctx context.Context, interval time.Duration)
}

type accessService struct {
	uowFactory unitofwork.RepositoryFactory
	matrix     *entitlement.Matrix
	clock      Clock
	logger     logger.ILogger
}

func NewAccessService(uowFactory unitofwork.RepositoryFactory, matrix *entitlement.Matrix, clock Clock, log logger.ILogger) IAccessService {
	return &accessService{
		uowFactory: uowFactory,
		matrix:     matrix,
		clock:      clock.orDefault(),
		logger:     log,
	}
}

func (s *accessService) HasAccess(ctx context.Context, principal entity.Principal, toolName string) (bool, error) {
	if principal.IsAdmin() {
		return true, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	grant, err := uow.ToolAccessRepository().FindByPrincipalAndTool(ctx, principal.UserId, entitlement.ToolID(toolName))
	if err != nil {
		return false, fmt.Errorf("failed to load access for %s: %w", principal.UserId, err)
	}
	return grant.ActiveAt(s.clock()), nil
}

func (s *accessService) ListAccess(ctx context.Context, principal entity.Principal) ([]*entity.ToolAccess, error) {
	if principal.IsAdmin() {
		return s.adminCatalog(principal), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	grants, err := uow.ToolAccessRepository().FindAllByPrincipal(ctx, principal.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to list access for %s: %w", principal.UserId, err)
	}

	now := s.clock()
	active := make([]*entity.ToolAccess, 0, len(grants))
	for _, g := range grants {
		if g.ActiveAt(now) {
			active = append(active, g)
		}
	}
	return active, nil
}

func (s *accessService) adminCatalog(principal entity.Principal) []*entity.ToolAccess {
	catalog := s.matrix.Catalog()
	out := make([]*entity.ToolAccess, len(catalog))
	for i, tool := range catalog {
		out[i] = &entity.ToolAccess{
			PrincipalId: principal.UserId,
			ToolId:      tool.Id,
			ToolName:    tool.Name,
			HasAccess:   true,
			AccessType:  entity.AccessTypeAdmin,
		}
	}
	return out
}

// PurgeExpired clears HasAccess on lapsed grants. Rows are kept.
func (s *accessService) PurgeExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.ToolAccessRepository().RevokeExpired(ctx, s.clock())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired access: %w", err)
	}
	if n > 0 {
		s.logger.Info("AccessService", "Expired access revoked", map[string]interface{}{"count": n})
	}
	return n, nil
}

// RunPurger calls PurgeExpired every interval until ctx is cancelled.
// A non-positive interval disables it.
func (s *accessService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				s.logger.Error("AccessService", "Purge failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
