package implementation

import (
	"context"
	"errors"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/mapper"
	"persona-forge-be/internal/model"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScopeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScopeMapper
}

func NewScopeRepository(db *gorm.DB) contract.ScopeRepository {
	return &ScopeRepositoryImpl{
		db:     db,
		mapper: mapper.NewScopeMapper(),
	}
}

func (r *ScopeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ScopeRepositoryImpl) Create(ctx context.Context, scope *entity.Scope) error {
	m := r.mapper.ToModel(scope)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*scope = *r.mapper.ToEntity(m)
	return nil
}

func (r *ScopeRepositoryImpl) Update(ctx context.Context, scope *entity.Scope) error {
	m := r.mapper.ToModel(scope)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*scope = *r.mapper.ToEntity(m)
	return nil
}

func (r *ScopeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Scope{}, id).Error
}

func (r *ScopeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Scope, error) {
	var m model.Scope
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ScopeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Scope, error) {
	var models []*model.Scope
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Scope, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ScopeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Scope{}).Count(&count).Error
	return count, err
}
