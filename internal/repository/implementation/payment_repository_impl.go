package implementation

import (
	"context"
	"errors"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/mapper"
	"viralizaai-be/internal/model"
	"viralizaai-be/internal/repository/contract"
	"viralizaai-be/internal/repository/scope"
	"viralizaai-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *entity.PaymentRecord) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *entity.PaymentRecord) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *PaymentRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PaymentRecord, error) {
	return r.findOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
}

func (r *PaymentRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentRecord, error) {
	var m model.Payment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) FindAll(ctx context.Context, filter contract.PaymentFilter) ([]*entity.PaymentRecord, error) {
	specs := []specification.Specification{}
	if filter.PayerId != nil {
		specs = append(specs, specification.ByPayerID{PayerID: *filter.PayerId})
	}
	if filter.Status != "" {
		specs = append(specs, specification.ByStatus{Status: string(filter.Status)})
	}
	specs = append(specs, specification.Pagination{Limit: filter.Limit, Offset: filter.Offset})

	var models []*model.Payment
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
