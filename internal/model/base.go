package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel audit columns shared by every table.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"created_at"`
	CreatedBy string    `gorm:"type:varchar(64);not null;default:''" json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"updated_at"`
	UpdatedBy string    `gorm:"type:varchar(64);not null;default:''" json:"updated_by,omitempty"`
}

// SoftDeleteModel audit columns plus soft delete.
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
