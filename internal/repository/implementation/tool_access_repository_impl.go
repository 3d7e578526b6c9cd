package implementation

import (
	"context"
	"errors"
	"time"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/mapper"
	"viralizaai-be/internal/model"
	"viralizaai-be/internal/repository/contract"
	"viralizaai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ToolAccessRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ToolAccessMapper
}

func NewToolAccessRepository(db *gorm.DB) contract.ToolAccessRepository {
	return &ToolAccessRepositoryImpl{
		db:     db,
		mapper: mapper.NewToolAccessMapper(),
	}
}

func (r *ToolAccessRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ToolAccessRepositoryImpl) Upsert(ctx context.Context, access *entity.ToolAccess) error {
	if access.Id == uuid.Nil {
		access.Id = uuid.New()
	}
	m := r.mapper.ToModel(access)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "principal_id"}, {Name: "tool_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tool_name", "has_access", "access_type", "expires_at", "source_payment_id", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// The conflicting row keeps its original id; read it back so callers see the stored row.
	stored, err := r.FindByPrincipalAndTool(ctx, access.PrincipalId, access.ToolId)
	if err != nil {
		return err
	}
	if stored != nil {
		*access = *stored
	}
	return nil
}

func (r *ToolAccessRepositoryImpl) FindByPrincipalAndTool(ctx context.Context, principalId uuid.UUID, toolId string) (*entity.ToolAccess, error) {
	var m model.ToolAccess
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByPrincipalID{PrincipalID: principalId},
		specification.ByToolID{ToolID: toolId},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ToolAccessRepositoryImpl) FindAllByPrincipal(ctx context.Context, principalId uuid.UUID) ([]*entity.ToolAccess, error) {
	var models []*model.ToolAccess
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByPrincipalID{PrincipalID: principalId},
		specification.OrderBy{Field: "tool_id"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ToolAccess, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ToolAccessRepositoryImpl) RevokeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ToolAccess{}),
		specification.ExpiredBefore{At: now},
	)
	result := query.Updates(map[string]interface{}{
		"has_access": false,
		"updated_at": now,
	})
	return result.RowsAffected, result.Error
}
