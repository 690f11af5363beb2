package models

import (
	"time"

	"gorm.io/gorm"

	"royalfootwear/internal/uuid"
)

// Base holds the key and timestamps shared by every table.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a UUIDv7 to rows inserted without an ID.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// Aggregate is a per-user root row whose Version advances on every committed
// write to it or its children. A write that finds a different version than it
// loaded has lost a race and must be retried.
type Aggregate struct {
	Base
	UserID  string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Version int    `gorm:"not null;default:0" json:"-"`
}
