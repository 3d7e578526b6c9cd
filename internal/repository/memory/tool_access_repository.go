package memory

import (
	"context"
	"sort"
	"time"

	"viralizaai-be/internal/entity"

	"github.com/google/uuid"
)

type toolAccessRepository struct {
	uow *UnitOfWork
}

func (r *toolAccessRepository) Upsert(ctx context.Context, access *entity.ToolAccess) error {
	key := accessKey{access.PrincipalId, access.ToolId}
	if existing := r.uow.readAccess(key); existing != nil {
		access.Id = existing.Id
		access.CreatedAt = existing.CreatedAt
	} else if access.Id == uuid.Nil {
		access.Id = uuid.New()
	}
	r.uow.writeAccess(access)
	return nil
}

func (r *toolAccessRepository) FindByPrincipalAndTool(ctx context.Context, principalId uuid.UUID, toolId string) (*entity.ToolAccess, error) {
	return r.uow.readAccess(accessKey{principalId, toolId}), nil
}

func (r *toolAccessRepository) FindAllByPrincipal(ctx context.Context, principalId uuid.UUID) ([]*entity.ToolAccess, error) {
	out := []*entity.ToolAccess{}
	for _, a := range r.uow.allAccess() {
		if a.PrincipalId == principalId {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ToolId < out[j].ToolId
	})
	return out, nil
}

func (r *toolAccessRepository) RevokeExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, a := range r.uow.allAccess() {
		if a.HasAccess && a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
			a.HasAccess = false
			a.UpdatedAt = now
			r.uow.writeAccess(a)
			n++
		}
	}
	return n, nil
}
