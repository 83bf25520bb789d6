package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = -5
	MaxRating = 5
)

// Rating is a participant's score for an accepted interaction. Rows are never updated.
type Rating struct {
	BaseModel
	InteractionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_rating_interaction_rater" json:"interaction_id"`
	RaterID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_rating_interaction_rater" json:"rater_id"`
	Score         int       `gorm:"column:rating;not null;check:chk_rating_range,rating >= -5 AND rating <= 5" json:"rating"`
	Comment       *string   `gorm:"type:varchar(1024)" json:"comment"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`

	Interaction *Interaction `gorm:"foreignKey:InteractionID;constraint:OnDelete:CASCADE" json:"-"`
	Rater       *User        `gorm:"foreignKey:RaterID" json:"-"`
}

// RatingWithRater is a rating enriched with the rater's display fields.
type RatingWithRater struct {
	Rating
	RaterEmail    string  `json:"rater_email"`
	RaterFullName *string `json:"rater_full_name"`
}

// TableName 指定 Rating 模型的表名。
func (Rating) TableName() string {
	return "ratings"
}
