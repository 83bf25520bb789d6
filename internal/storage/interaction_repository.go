package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchgraph/internal/models"
)

// InteractionRepository defines the data operations for interaction requests.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *models.Interaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Interaction, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Interaction, error)
	FindPending(ctx context.Context, initiatorID, targetID uuid.UUID) (*models.Interaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InteractionStatus, at time.Time) error
	ListForUser(ctx context.Context, userID uuid.UUID, role models.InteractionRole, offset, limit int) ([]models.Interaction, error)
}

type gormInteractionRepository struct {
	db *gorm.DB
}

func NewGormInteractionRepository(db *gorm.DB) InteractionRepository {
	return &gormInteractionRepository{db: db}
}

func (r *gormInteractionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

func (r *gormInteractionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Interaction, error) {
	var interaction models.Interaction
	if err := r.db.WithContext(ctx).First(&interaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &interaction, nil
}

// GetByIDForUpdate reads the row with SELECT ... FOR UPDATE so that two responders
// cannot both observe the pending status. sqlite ignores the locking clause.
func (r *gormInteractionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Interaction, error) {
	var interaction models.Interaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&interaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// FindPending returns the pending interaction for the exact ordered pair, or nil.
// The reverse direction is deliberately not considered.
func (r *gormInteractionRepository) FindPending(ctx context.Context, initiatorID, targetID uuid.UUID) (*models.Interaction, error) {
	var interaction models.Interaction
	err := r.db.WithContext(ctx).
		Where("initiator_id = ? AND target_id = ?", initiatorID, targetID).
		Where("status = ?", models.InteractionStatusPending).
		First(&interaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &interaction, nil
}

func (r *gormInteractionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InteractionStatus, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Interaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": at}).Error
}

func (r *gormInteractionRepository) ListForUser(ctx context.Context, userID uuid.UUID, role models.InteractionRole, offset, limit int) ([]models.Interaction, error) {
	interactions := []models.Interaction{}
	query := r.db.WithContext(ctx).Model(&models.Interaction{})

	switch role {
	case models.InteractionRoleInitiator:
		query = query.Where("initiator_id = ?", userID)
	case models.InteractionRoleTarget:
		query = query.Where("target_id = ?", userID)
	default:
		query = query.Where("initiator_id = ? OR target_id = ?", userID, userID)
	}

	err := query.
		Order("created_at DESC").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&interactions).Error
	return interactions, err
}
