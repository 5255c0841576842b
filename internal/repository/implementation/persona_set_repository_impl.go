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

type PersonaSetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PersonaSetMapper
}

func NewPersonaSetRepository(db *gorm.DB) contract.PersonaSetRepository {
	return &PersonaSetRepositoryImpl{
		db:     db,
		mapper: mapper.NewPersonaSetMapper(),
	}
}

func (r *PersonaSetRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PersonaSetRepositoryImpl) Create(ctx context.Context, set *entity.PersonaSet) error {
	m := r.mapper.ToModel(set)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.ToEntity(m)
	return nil
}

func (r *PersonaSetRepositoryImpl) Update(ctx context.Context, set *entity.PersonaSet) error {
	m := r.mapper.ToModel(set)
	// Personas are managed through their own repository, do not upsert them here.
	if err := r.db.WithContext(ctx).Omit("Personas").Save(m).Error; err != nil {
		return err
	}
	*set = *r.mapper.ToEntity(m)
	return nil
}

func (r *PersonaSetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PersonaSet{}, id).Error
}

func (r *PersonaSetRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PersonaSet, error) {
	var m model.PersonaSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PersonaSetRepositoryImpl) FindOneWithPersonas(ctx context.Context, specs ...specification.Specification) (*entity.PersonaSet, error) {
	var m model.PersonaSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	query = query.Preload("Personas", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PersonaSetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PersonaSet, error) {
	var models []*model.PersonaSet
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PersonaSetRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.PersonaSet{}).Count(&count).Error
	return count, err
}

func (r *PersonaSetRepositoryImpl) NextGenerationCycle(ctx context.Context, scopeId *uuid.UUID) (int, error) {
	// Two creating transactions reading the same MAX under READ COMMITTED
	// would both claim the same cycle. The per-scope advisory lock serializes
	// them; it is released when the transaction commits or rolls back.
	lockKey := "persona_sets_cycle:global"
	if scopeId != nil {
		lockKey = "persona_sets_cycle:" + scopeId.String()
	}
	if err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
		return 0, err
	}

	var maxCycle int
	// Unscoped so deleted sets still advance the counter and cycles are
	// never reused within a scope.
	query := r.db.WithContext(ctx).Unscoped().Model(&model.PersonaSet{}).
		Select("COALESCE(MAX(generation_cycle), 0)")
	if scopeId != nil {
		query = query.Where("scope_id = ?", *scopeId)
	} else {
		query = query.Where("scope_id IS NULL")
	}
	if err := query.Scan(&maxCycle).Error; err != nil {
		return 0, err
	}
	return maxCycle + 1, nil
}
