package mapper

import (
	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToEntity(p *model.Payment) *entity.PaymentRecord {
	if p == nil {
		return nil
	}
	return &entity.PaymentRecord{
		Id:            p.Id,
		PayerId:       p.PayerId,
		PayerEmail:    p.PayerEmail,
		Kind:          entity.PaymentKind(p.Kind),
		ItemName:      p.ItemName,
		Amount:        p.Amount,
		Method:        entity.PaymentMethod(p.Method),
		Status:        entity.PaymentStatus(p.Status),
		TransactionId: p.TransactionId,
		PixTxId:       p.PixTxId,
		FailureReason: p.FailureReason,
		Metadata:      map[string]interface{}(p.Metadata),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CompletedAt:   p.CompletedAt,
		FailedAt:      p.FailedAt,
		ValidUntil:    p.ValidUntil,
	}
}

func (m *PaymentMapper) ToModel(p *entity.PaymentRecord) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:            p.Id,
		PayerId:       p.PayerId,
		PayerEmail:    p.PayerEmail,
		Kind:          string(p.Kind),
		ItemName:      p.ItemName,
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionId: p.TransactionId,
		PixTxId:       p.PixTxId,
		FailureReason: p.FailureReason,
		Metadata:      datatypes.JSONMap(p.Metadata),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CompletedAt:   p.CompletedAt,
		FailedAt:      p.FailedAt,
		ValidUntil:    p.ValidUntil,
	}
}

func (m *PaymentMapper) ToEntities(models []*model.Payment) []*entity.PaymentRecord {
	entities := make([]*entity.PaymentRecord, len(models))
	for i, p := range models {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
