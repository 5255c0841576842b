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

type PersonaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PersonaMapper
}

func NewPersonaRepository(db *gorm.DB) contract.PersonaRepository {
	return &PersonaRepositoryImpl{
		db:     db,
		mapper: mapper.NewPersonaMapper(),
	}
}

func (r *PersonaRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PersonaRepositoryImpl) CreateBulk(ctx context.Context, personas []*entity.Persona) error {
	if len(personas) == 0 {
		return nil
	}
	models := make([]*model.Persona, len(personas))
	for i, p := range personas {
		models[i] = r.mapper.ToModel(p)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*personas[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PersonaRepositoryImpl) Update(ctx context.Context, persona *entity.Persona) error {
	m := r.mapper.ToModel(persona)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*persona = *r.mapper.ToEntity(m)
	return nil
}

func (r *PersonaRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Persona{}, id).Error
}

func (r *PersonaRepositoryImpl) DeleteByPersonaSetId(ctx context.Context, personaSetId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("persona_set_id = ?", personaSetId).Delete(&model.Persona{}).Error
}

func (r *PersonaRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Persona, error) {
	var m model.Persona
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PersonaRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Persona, error) {
	var models []*model.Persona
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PersonaRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Persona{}).Count(&count).Error
	return count, err
}
