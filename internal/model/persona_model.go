package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Persona lives and dies with its PersonaSet (FK cascade). Embedding stays
// NULL until a scoring stage computes it.
type Persona struct {
	Id               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PersonaSetId     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name             string           `gorm:"type:varchar(255);not null"`
	StructuredFields datatypes.JSON   `gorm:"type:jsonb;not null"`
	Embedding        *pgvector.Vector `gorm:"type:vector(768)"`
	ValidationScore  *float64
	ValidationStatus string         `gorm:"type:varchar(20);default:''"`
	ValidationDetail datatypes.JSON `gorm:"type:jsonb"`
	ExpansionError   *string        `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (Persona) TableName() string {
	return "personas"
}
