package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByScopeID filters records bound to a specific scope.
type ByScopeID struct {
	ScopeID uuid.UUID
}

func (s ByScopeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scope_id = ?", s.ScopeID)
}

// GlobalScope filters records that are not bound to any scope.
type GlobalScope struct{}

func (s GlobalScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scope_id IS NULL")
}

// ByDocumentType filters documents by their source type (context or interview).
type ByDocumentType struct {
	Type string
}

func (s ByDocumentType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

// ByStatus filters by the status column, shared by documents and persona sets.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByDocumentID filters chunks belonging to a single document.
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ByPersonaSetID filters personas belonging to a single set.
type ByPersonaSetID struct {
	PersonaSetID uuid.UUID
}

func (s ByPersonaSetID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("persona_set_id = ?", s.PersonaSetID)
}

// ByGenerationCycle filters persona sets of one generation cycle within a scope.
type ByGenerationCycle struct {
	Cycle int
}

func (s ByGenerationCycle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("generation_cycle = ?", s.Cycle)
}
