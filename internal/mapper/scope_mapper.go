package mapper

import (
	"time"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/model"
)

type ScopeMapper struct{}

func NewScopeMapper() *ScopeMapper {
	return &ScopeMapper{}
}

func (m *ScopeMapper) ToEntity(s *model.Scope) *entity.Scope {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Scope{
		Id:            s.Id,
		Name:          s.Name,
		FieldOfStudy:  s.FieldOfStudy,
		CoreObjective: s.CoreObjective,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ScopeMapper) ToModel(s *entity.Scope) *model.Scope {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Scope{
		Id:            s.Id,
		Name:          s.Name,
		FieldOfStudy:  s.FieldOfStudy,
		CoreObjective: s.CoreObjective,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ScopeMapper) ToEntities(scopes []*model.Scope) []*entity.Scope {
	entities := make([]*entity.Scope, len(scopes))
	for i, s := range scopes {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
