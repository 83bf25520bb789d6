package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"matchgraph/internal/models"
)

// RatingRepository defines the data operations for interaction ratings. There is no
// update or delete path: ratings are immutable once written.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	FindByInteractionAndRater(ctx context.Context, interactionID, raterID uuid.UUID) (*models.Rating, error)
	ListByInteraction(ctx context.Context, interactionID uuid.UUID) ([]models.Rating, error)
}

type gormRatingRepository struct {
	db *gorm.DB
}

func NewGormRatingRepository(db *gorm.DB) RatingRepository {
	return &gormRatingRepository{db: db}
}

// Create inserts the rating. A second rating for the same (interaction, rater) pair
// fails on uq_rating_interaction_rater with gorm.ErrDuplicatedKey.
func (r *gormRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *gormRatingRepository) FindByInteractionAndRater(ctx context.Context, interactionID, raterID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("interaction_id = ? AND rater_id = ?", interactionID, raterID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func (r *gormRatingRepository) ListByInteraction(ctx context.Context, interactionID uuid.UUID) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := r.db.WithContext(ctx).
		Where("interaction_id = ?", interactionID).
		Order("created_at").
		Find(&ratings).Error
	return ratings, err
}
