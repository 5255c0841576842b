package mapper

import (
	"encoding/json"
	"time"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PersonaMapper struct{}

func NewPersonaMapper() *PersonaMapper {
	return &PersonaMapper{}
}

func (m *PersonaMapper) ToEntity(p *model.Persona) *entity.Persona {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	var fields map[string]interface{}
	if len(p.StructuredFields) > 0 {
		_ = json.Unmarshal(p.StructuredFields, &fields)
	}

	var detail *entity.PersonaValidation
	if len(p.ValidationDetail) > 0 {
		detail = &entity.PersonaValidation{}
		_ = json.Unmarshal(p.ValidationDetail, detail)
	}

	var embedding []float32
	if p.Embedding != nil {
		embedding = p.Embedding.Slice()
	}

	return &entity.Persona{
		Id:               p.Id,
		PersonaSetId:     p.PersonaSetId,
		Name:             p.Name,
		StructuredFields: fields,
		Embedding:        embedding,
		ValidationScore:  p.ValidationScore,
		ValidationStatus: p.ValidationStatus,
		ValidationDetail: detail,
		ExpansionError:   p.ExpansionError,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *PersonaMapper) ToModel(p *entity.Persona) *model.Persona {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	fields, _ := json.Marshal(p.StructuredFields)

	var detail datatypes.JSON
	if p.ValidationDetail != nil {
		detail, _ = json.Marshal(p.ValidationDetail)
	}

	var embedding *pgvector.Vector
	if len(p.Embedding) > 0 {
		v := pgvector.NewVector(p.Embedding)
		embedding = &v
	}

	return &model.Persona{
		Id:               p.Id,
		PersonaSetId:     p.PersonaSetId,
		Name:             p.Name,
		StructuredFields: fields,
		Embedding:        embedding,
		ValidationScore:  p.ValidationScore,
		ValidationStatus: p.ValidationStatus,
		ValidationDetail: detail,
		ExpansionError:   p.ExpansionError,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *PersonaMapper) ToEntities(personas []*model.Persona) []*entity.Persona {
	entities := make([]*entity.Persona, len(personas))
	for i, p := range personas {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

type PersonaSetMapper struct {
	personaMapper *PersonaMapper
}

func NewPersonaSetMapper() *PersonaSetMapper {
	return &PersonaSetMapper{personaMapper: NewPersonaMapper()}
}

func (m *PersonaSetMapper) ToEntity(s *model.PersonaSet) *entity.PersonaSet {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var metrics *entity.RQEMetrics
	if len(s.RQEMetrics) > 0 {
		metrics = &entity.RQEMetrics{}
		_ = json.Unmarshal(s.RQEMetrics, metrics)
	}

	var summary *entity.ValidationSummary
	if len(s.ValidationSummary) > 0 {
		summary = &entity.ValidationSummary{}
		_ = json.Unmarshal(s.ValidationSummary, summary)
	}

	var config map[string]interface{}
	if len(s.GenerationConfig) > 0 {
		_ = json.Unmarshal(s.GenerationConfig, &config)
	}

	personas := make([]entity.Persona, len(s.Personas))
	for i := range s.Personas {
		personas[i] = *m.personaMapper.ToEntity(&s.Personas[i])
	}

	return &entity.PersonaSet{
		Id:                s.Id,
		ScopeId:           s.ScopeId,
		GenerationCycle:   s.GenerationCycle,
		Mode:              s.Mode,
		Status:            s.Status,
		RequestedCount:    s.RequestedCount,
		DiversityScore:    s.DiversityScore,
		RQEMetrics:        metrics,
		ValidationSummary: summary,
		GenerationConfig:  config,
		Personas:          personas,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *PersonaSetMapper) ToModel(s *entity.PersonaSet) *model.PersonaSet {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	var metrics datatypes.JSON
	if s.RQEMetrics != nil {
		metrics, _ = json.Marshal(s.RQEMetrics)
	}

	var summary datatypes.JSON
	if s.ValidationSummary != nil {
		summary, _ = json.Marshal(s.ValidationSummary)
	}

	var config datatypes.JSON
	if s.GenerationConfig != nil {
		config, _ = json.Marshal(s.GenerationConfig)
	}

	personas := make([]model.Persona, len(s.Personas))
	for i := range s.Personas {
		personas[i] = *m.personaMapper.ToModel(&s.Personas[i])
	}

	return &model.PersonaSet{
		Id:                s.Id,
		ScopeId:           s.ScopeId,
		GenerationCycle:   s.GenerationCycle,
		Mode:              s.Mode,
		Status:            s.Status,
		RequestedCount:    s.RequestedCount,
		DiversityScore:    s.DiversityScore,
		RQEMetrics:        metrics,
		ValidationSummary: summary,
		GenerationConfig:  config,
		Personas:          personas,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *PersonaSetMapper) ToEntities(sets []*model.PersonaSet) []*entity.PersonaSet {
	entities := make([]*entity.PersonaSet, len(sets))
	for i, s := range sets {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
