package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ScopeId    *uuid.UUID     `gorm:"type:uuid;index"` // nullable: unscoped documents are searchable globally
	Type       string         `gorm:"type:varchar(20);not null;index"`
	Filename   string         `gorm:"type:varchar(255)"`
	RawText    string         `gorm:"type:text;not null"`
	TokenCount int            `gorm:"default:0"`
	Status     string         `gorm:"type:varchar(20);not null;default:'pending'"`
	FailReason string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
