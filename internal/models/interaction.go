package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionStatus 定义互动请求的状态
type InteractionStatus string

const (
	InteractionStatusPending  InteractionStatus = "pending"
	InteractionStatusAccepted InteractionStatus = "accepted"
	InteractionStatusDenied   InteractionStatus = "denied"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s InteractionStatus) IsTerminal() bool {
	return s == InteractionStatusAccepted || s == InteractionStatusDenied
}

// InteractionRole narrows a user's interaction listing.
type InteractionRole string

const (
	InteractionRoleAny       InteractionRole = ""
	InteractionRoleInitiator InteractionRole = "initiator"
	InteractionRoleTarget    InteractionRole = "target"
)

// Interaction is a directed connection request from an initiator to a target.
// Only one pending row per ordered (initiator, target) pair may exist. The partial
// index uq_interaction_pending_pair covers pending rows only, so a pair can request
// again after a response.
type Interaction struct {
	BaseModel
	InitiatorID uuid.UUID         `gorm:"type:uuid;not null;index:idx_interaction_pair;uniqueIndex:uq_interaction_pending_pair,priority:1,where:status = 'pending'" json:"initiator_id"`
	TargetID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_interaction_pair;index:idx_interaction_target;uniqueIndex:uq_interaction_pending_pair,priority:2,where:status = 'pending'" json:"target_id"`
	Message     *string           `gorm:"type:varchar(1024)" json:"message"`
	Status      InteractionStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`

	Initiator *User `gorm:"foreignKey:InitiatorID" json:"-"`
	Target    *User `gorm:"foreignKey:TargetID" json:"-"`
}

// IsParticipant reports whether userID is the initiator or the target.
func (i *Interaction) IsParticipant(userID uuid.UUID) bool {
	return i.InitiatorID == userID || i.TargetID == userID
}

// TableName 指定 Interaction 模型的表名。
func (Interaction) TableName() string {
	return "interactions"
}
