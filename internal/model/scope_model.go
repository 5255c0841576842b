package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Scope struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string         `gorm:"type:varchar(255);not null"`
	FieldOfStudy  string         `gorm:"type:varchar(255)"`
	CoreObjective string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Scope) TableName() string {
	return "scopes"
}
