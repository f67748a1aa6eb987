package model

import (
	"time"

	"gorm.io/gorm"
)

// Base carries the surrogate key, timestamps and the soft-delete column shared by every table.
type Base struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// PrimaryKey returns the row id.
func (b Base) PrimaryKey() uint {
	return b.ID
}

// IsDeleted reports whether the row has been soft-deleted.
func (b Base) IsDeleted() bool {
	return b.DeletedAt.Valid
}

// Entity is implemented by every model embedding Base.
type Entity interface {
	PrimaryKey() uint
	IsDeleted() bool
}
