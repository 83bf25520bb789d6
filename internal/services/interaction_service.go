package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"matchgraph/internal/config"
	"matchgraph/internal/kafka"
	"matchgraph/internal/models"
	"matchgraph/internal/storage"
	"matchgraph/internal/validation"
)

// InteractionService manages the lifecycle of interaction requests between two users.
type InteractionService interface {
	CreateInteraction(ctx context.Context, initiatorID, targetID uuid.UUID, message *string) (*models.Interaction, error)
	RespondInteraction(ctx context.Context, interactionID, responderID uuid.UUID, accept bool) (*models.Interaction, error)
	ListUserInteractions(ctx context.Context, userID uuid.UUID, role models.InteractionRole, skip, limit int) ([]models.Interaction, error)
	GetInteraction(ctx context.Context, interactionID uuid.UUID) (*models.Interaction, error)
}

type interactionService struct {
	db         *gorm.DB
	repo       storage.InteractionRepository
	events     *eventEmitter
	pagination config.PaginationConfig
	now        func() time.Time
	txRepo     func(tx *gorm.DB) storage.InteractionRepository
}

// NewInteractionService creates a new InteractionService instance.
func NewInteractionService(
	db *gorm.DB,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	pagination config.PaginationConfig,
) InteractionService {
	if pagination.DefaultLimit <= 0 {
		pagination.DefaultLimit = defaultListLimit
	}
	return &interactionService{
		db:         db,
		repo:       storage.NewGormInteractionRepository(db),
		events:     newEventEmitter(producer, kafkaCfg.EventsTopic),
		pagination: pagination,
		now:        utcNow,
		txRepo:     storage.NewGormInteractionRepository,
	}
}

const defaultListLimit = 100

func utcNow() time.Time {
	return time.Now().UTC()
}

// CreateInteraction opens a pending request from initiator to target. At most one
// pending request may exist per ordered pair; the reverse direction is independent.
func (s *interactionService) CreateInteraction(ctx context.Context, initiatorID, targetID uuid.UUID, message *string) (*models.Interaction, error) {
	if err := validation.ValidateMessage(message); err != nil {
		return nil, validationError(err)
	}
	if initiatorID == targetID {
		return nil, ErrInteractionSelf
	}

	now := s.now()
	interaction := &models.Interaction{
		InitiatorID: initiatorID,
		TargetID:    targetID,
		Message:     message,
		Status:      models.InteractionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.txRepo(tx)

		existing, err := txRepo.FindPending(ctx, initiatorID, targetID)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"initiator_id": initiatorID, "target_id": targetID}).
				Error("failed to check for pending interaction")
			return fmt.Errorf("check pending interaction: %w", err)
		}
		if existing != nil {
			return ErrInteractionPendingExists
		}

		if err := txRepo.Create(ctx, interaction); err != nil {
			// uq_interaction_pending_pair rejects a concurrent second pending row
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrInteractionPendingExists
			}
			log.WithError(err).WithFields(log.Fields{"initiator_id": initiatorID, "target_id": targetID}).
				Error("failed to create interaction")
			return fmt.Errorf("create interaction: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.WithFields(log.Fields{
		"interaction_id": interaction.ID,
		"initiator_id":   initiatorID,
		"target_id":      targetID,
	}).Info("interaction created")

	s.events.emit(ctx, DomainEvent{
		Type:      EventInteractionCreated,
		EntityID:  interaction.ID,
		ActorID:   initiatorID,
		Payload:   interaction,
		Timestamp: now,
	})
	return interaction, nil
}

// RespondInteraction moves a pending interaction to accepted or denied. Only the target
// may respond, and only once.
func (s *interactionService) RespondInteraction(ctx context.Context, interactionID, responderID uuid.UUID, accept bool) (*models.Interaction, error) {
	var interaction *models.Interaction
	now := s.now()

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.txRepo(tx)

		current, err := txRepo.GetByIDForUpdate(ctx, interactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInteractionNotFound
			}
			log.WithError(err).WithField("interaction_id", interactionID).Error("failed to load interaction")
			return fmt.Errorf("load interaction: %w", err)
		}

		if current.TargetID != responderID {
			return ErrNotInteractionTarget
		}
		if current.Status != models.InteractionStatusPending {
			return ErrInteractionNotPending
		}

		status := models.InteractionStatusDenied
		if accept {
			status = models.InteractionStatusAccepted
		}
		if err := txRepo.UpdateStatus(ctx, interactionID, status, now); err != nil {
			log.WithError(err).WithField("interaction_id", interactionID).Error("failed to update interaction status")
			return fmt.Errorf("update interaction status: %w", err)
		}

		current.Status = status
		current.UpdatedAt = now
		interaction = current
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.WithFields(log.Fields{
		"interaction_id": interaction.ID,
		"responder_id":   responderID,
		"status":         interaction.Status,
	}).Info("interaction responded")

	s.events.emit(ctx, DomainEvent{
		Type:      EventInteractionResponded,
		EntityID:  interaction.ID,
		ActorID:   responderID,
		Payload:   interaction,
		Timestamp: now,
	})
	return interaction, nil
}

// ListUserInteractions returns a page of the user's interactions, newest first.
// An empty role means both directions.
func (s *interactionService) ListUserInteractions(ctx context.Context, userID uuid.UUID, role models.InteractionRole, skip, limit int) ([]models.Interaction, error) {
	switch role {
	case models.InteractionRoleAny, models.InteractionRoleInitiator, models.InteractionRoleTarget:
	default:
		return nil, ErrInvalidRole
	}

	limit, err := validation.ValidatePage(skip, limit, s.pagination.DefaultLimit, s.pagination.MaxLimit)
	if err != nil {
		return nil, validationError(err)
	}

	interactions, err := s.repo.ListForUser(ctx, userID, role, skip, limit)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to list interactions")
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return interactions, nil
}

func (s *interactionService) GetInteraction(ctx context.Context, interactionID uuid.UUID) (*models.Interaction, error) {
	interaction, err := s.repo.GetByID(ctx, interactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("get interaction: %w", err)
	}
	return interaction, nil
}
