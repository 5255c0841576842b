package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PersonaSet struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ScopeId           *uuid.UUID     `gorm:"type:uuid;index:idx_persona_sets_scope_cycle,priority:1"`
	GenerationCycle   int            `gorm:"not null;default:1;index:idx_persona_sets_scope_cycle,priority:2"`
	Mode              string         `gorm:"type:varchar(20);not null"`
	Status            string         `gorm:"type:varchar(20);not null;default:'generated'"`
	RequestedCount    int            `gorm:"not null"`
	DiversityScore    *float64       // nullable until the diversity stage runs
	RQEMetrics        datatypes.JSON `gorm:"type:jsonb"`
	ValidationSummary datatypes.JSON `gorm:"type:jsonb"`
	GenerationConfig  datatypes.JSON `gorm:"type:jsonb"`
	Personas          []Persona      `gorm:"foreignKey:PersonaSetId;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (PersonaSet) TableName() string {
	return "persona_sets"
}
