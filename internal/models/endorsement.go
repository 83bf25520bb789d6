package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinConfidence = 0.0
	MaxConfidence = 1.0
)

// Endorsement is a directed, weighted trust edge. uq_endorsement_endorser_endorsed keeps
// exactly one row per ordered pair and is the conflict target of the upsert.
type Endorsement struct {
	BaseModel
	EndorserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_endorsement_endorser_endorsed,priority:1;index:ix_endorsement_endorser_id" json:"endorser_id"`
	EndorsedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_endorsement_endorser_endorsed,priority:2;index:ix_endorsement_endorsed_id" json:"endorsed_id"`
	Confidence float64   `gorm:"not null;check:chk_endorsement_confidence,confidence >= 0 AND confidence <= 1" json:"confidence"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`

	Endorser *User `gorm:"foreignKey:EndorserID;constraint:OnDelete:CASCADE" json:"-"`
	Endorsed *User `gorm:"foreignKey:EndorsedID;constraint:OnDelete:CASCADE" json:"-"`
}

// EndorsementWithUser is an endorsement enriched with the counterpart's display fields:
// the endorsed user when listing by endorser, the endorser when listing by endorsed.
type EndorsementWithUser struct {
	Endorsement
	UserEmail    string  `json:"user_email"`
	UserFullName *string `json:"user_full_name"`
}

// TableName 指定 Endorsement 模型的表名。
func (Endorsement) TableName() string {
	return "endorsements"
}
