package mapper

import (
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/model"
)

type ToolAccessMapper struct{}

func NewToolAccessMapper() *ToolAccessMapper {
	return &ToolAccessMapper{}
}

func (m *ToolAccessMapper) ToEntity(a *model.ToolAccess) *entity.ToolAccess {
	if a == nil {
		return nil
	}
	return &entity.ToolAccess{
		Id:              a.Id,
		PrincipalId:     a.PrincipalId,
		ToolId:          a.ToolId,
		ToolName:        a.ToolName,
		HasAccess:       a.HasAccess,
		AccessType:      entity.AccessType(a.AccessType),
		ExpiresAt:       a.ExpiresAt,
		SourcePaymentId: a.SourcePaymentId,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (m *ToolAccessMapper) ToModel(a *entity.ToolAccess) *model.ToolAccess {
	if a == nil {
		return nil
	}
	return &model.ToolAccess{
		Id:              a.Id,
		PrincipalId:     a.PrincipalId,
		ToolId:          a.ToolId,
		ToolName:        a.ToolName,
		HasAccess:       a.HasAccess,
		AccessType:      string(a.AccessType),
		ExpiresAt:       a.ExpiresAt,
		SourcePaymentId: a.SourcePaymentId,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
