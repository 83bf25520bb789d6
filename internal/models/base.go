package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the uuid primary key shared by every table.
// Timestamps live on each model because ratings are immutable and have no updated_at.
type BaseModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

// BeforeCreate assigns a random uuid when the caller did not set one.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IDString returns the ID as a string.
func (b *BaseModel) IDString() string {
	return b.ID.String()
}
