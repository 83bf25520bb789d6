package storage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchgraph/internal/models"
)

// EndorsementRepository defines the data operations for endorsement edges.
type EndorsementRepository interface {
	Upsert(ctx context.Context, endorsement *models.Endorsement) (*models.Endorsement, error)
	GetByPair(ctx context.Context, endorserID, endorsedID uuid.UUID) (*models.Endorsement, error)
	ListByEndorser(ctx context.Context, endorserID uuid.UUID) ([]models.Endorsement, error)
	ListByEndorsed(ctx context.Context, endorsedID uuid.UUID) ([]models.Endorsement, error)
}

type gormEndorsementRepository struct {
	db *gorm.DB
}

func NewGormEndorsementRepository(db *gorm.DB) EndorsementRepository {
	return &gormEndorsementRepository{db: db}
}

// Upsert inserts the edge or, when the ordered pair already exists, overwrites
// confidence and updated_at in the same statement. id and created_at of an existing
// row are kept. The stored row is read back and returned.
func (r *gormEndorsementRepository) Upsert(ctx context.Context, endorsement *models.Endorsement) (*models.Endorsement, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endorser_id"}, {Name: "endorsed_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"confidence", "updated_at"}),
	}).Create(endorsement).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPair(ctx, endorsement.EndorserID, endorsement.EndorsedID)
}

func (r *gormEndorsementRepository) GetByPair(ctx context.Context, endorserID, endorsedID uuid.UUID) (*models.Endorsement, error) {
	var endorsement models.Endorsement
	err := r.db.WithContext(ctx).
		Where("endorser_id = ? AND endorsed_id = ?", endorserID, endorsedID).
		First(&endorsement).Error
	if err != nil {
		return nil, err
	}
	return &endorsement, nil
}

func (r *gormEndorsementRepository) ListByEndorser(ctx context.Context, endorserID uuid.UUID) ([]models.Endorsement, error) {
	endorsements := []models.Endorsement{}
	err := r.db.WithContext(ctx).
		Where("endorser_id = ?", endorserID).
		Order("updated_at DESC").
		Find(&endorsements).Error
	return endorsements, err
}

func (r *gormEndorsementRepository) ListByEndorsed(ctx context.Context, endorsedID uuid.UUID) ([]models.Endorsement, error) {
	endorsements := []models.Endorsement{}
	err := r.db.WithContext(ctx).
		Where("endorsed_id = ?", endorsedID).
		Order("updated_at DESC").
		Find(&endorsements).Error
	return endorsements, err
}
