package contract

import (
	"context"
	"time"

	"viralizaai-be/internal/entity"

	"github.com/google/uuid"
)

type ToolAccessRepository interface {
	// Upsert inserts or replaces the row keyed by (PrincipalId, ToolId).
	Upsert(ctx context.Context, access *entity.ToolAccess) error
	FindByPrincipalAndTool(ctx context.Context, principalId uuid.UUID, toolId string) (*entity.ToolAccess, error)
	FindAllByPrincipal(ctx context.Context, principalId uuid.UUID) ([]*entity.ToolAccess, error)
	// RevokeExpired clears HasAccess on every grant whose expiry is before now.
	RevokeExpired(ctx context.Context, now time.Time) (int64, error)
}
