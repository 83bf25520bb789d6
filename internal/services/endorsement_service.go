package services

import (
	"context"
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

// EndorsementService maintains the directed trust edges between users.
type EndorsementService interface {
	UpsertEndorsement(ctx context.Context, endorserID, endorsedID uuid.UUID, confidence float64) (*models.Endorsement, error)
	ListByEndorser(ctx context.Context, endorserID uuid.UUID) ([]models.Endorsement, error)
	ListByEndorsed(ctx context.Context, endorsedID uuid.UUID) ([]models.Endorsement, error)
	ListByEndorserWithUsers(ctx context.Context, endorserID uuid.UUID) ([]models.EndorsementWithUser, error)
	ListByEndorsedWithUsers(ctx context.Context, endorsedID uuid.UUID) ([]models.EndorsementWithUser, error)
}

type endorsementService struct {
	db       *gorm.DB
	repo     storage.EndorsementRepository
	userRepo storage.UserRepository
	events   *eventEmitter
	now      func() time.Time
}

// NewEndorsementService creates a new EndorsementService instance.
func NewEndorsementService(db *gorm.DB, producer kafka.MessageProducer, kafkaCfg config.KafkaConfig) EndorsementService {
	return &endorsementService{
		db:       db,
		repo:     storage.NewGormEndorsementRepository(db),
		userRepo: storage.NewGormUserRepository(db),
		events:   newEventEmitter(producer, kafkaCfg.EventsTopic),
		now:      utcNow,
	}
}

// UpsertEndorsement creates the endorser->endorsed edge or overwrites its confidence.
// The insert and the conflict update are one statement, so concurrent writers for the
// same pair still leave a single row.
func (s *endorsementService) UpsertEndorsement(ctx context.Context, endorserID, endorsedID uuid.UUID, confidence float64) (*models.Endorsement, error) {
	if err := validation.ValidateConfidence(confidence); err != nil {
		return nil, validationError(err)
	}
	if endorserID == endorsedID {
		return nil, ErrEndorseSelf
	}

	now := s.now()
	var stored *models.Endorsement

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stored, err = storage.NewGormEndorsementRepository(tx).Upsert(ctx, &models.Endorsement{
			EndorserID: endorserID,
			EndorsedID: endorsedID,
			Confidence: confidence,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"endorser_id": endorserID, "endorsed_id": endorsedID}).
				Error("failed to upsert endorsement")
			return fmt.Errorf("upsert endorsement: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.WithFields(log.Fields{
		"endorsement_id": stored.ID,
		"endorser_id":    endorserID,
		"endorsed_id":    endorsedID,
		"confidence":     confidence,
	}).Info("endorsement upserted")

	s.events.emit(ctx, DomainEvent{
		Type:      EventEndorsementUpserted,
		EntityID:  stored.ID,
		ActorID:   endorserID,
		Payload:   stored,
		Timestamp: now,
	})
	return stored, nil
}

func (s *endorsementService) ListByEndorser(ctx context.Context, endorserID uuid.UUID) ([]models.Endorsement, error) {
	endorsements, err := s.repo.ListByEndorser(ctx, endorserID)
	if err != nil {
		return nil, fmt.Errorf("list endorsements by endorser: %w", err)
	}
	return endorsements, nil
}

func (s *endorsementService) ListByEndorsed(ctx context.Context, endorsedID uuid.UUID) ([]models.Endorsement, error) {
	endorsements, err := s.repo.ListByEndorsed(ctx, endorsedID)
	if err != nil {
		return nil, fmt.Errorf("list endorsements by endorsed: %w", err)
	}
	return endorsements, nil
}

// ListByEndorserWithUsers attaches the endorsed user's display fields to each edge.
func (s *endorsementService) ListByEndorserWithUsers(ctx context.Context, endorserID uuid.UUID) ([]models.EndorsementWithUser, error) {
	endorsements, err := s.ListByEndorser(ctx, endorserID)
	if err != nil {
		return nil, err
	}
	return s.withUsers(ctx, endorsements, func(e models.Endorsement) uuid.UUID { return e.EndorsedID })
}

// ListByEndorsedWithUsers attaches the endorser's display fields to each edge.
func (s *endorsementService) ListByEndorsedWithUsers(ctx context.Context, endorsedID uuid.UUID) ([]models.EndorsementWithUser, error) {
	endorsements, err := s.ListByEndorsed(ctx, endorsedID)
	if err != nil {
		return nil, err
	}
	return s.withUsers(ctx, endorsements, func(e models.Endorsement) uuid.UUID { return e.EndorserID })
}

func (s *endorsementService) withUsers(ctx context.Context, endorsements []models.Endorsement, counterpart func(models.Endorsement) uuid.UUID) ([]models.EndorsementWithUser, error) {
	ids := make([]uuid.UUID, 0, len(endorsements))
	for _, e := range endorsements {
		ids = append(ids, counterpart(e))
	}
	dir, err := loadUserDirectory(ctx, s.userRepo, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.EndorsementWithUser, 0, len(endorsements))
	for _, e := range endorsements {
		email, fullName := dir.lookup(counterpart(e))
		result = append(result, models.EndorsementWithUser{Endorsement: e, UserEmail: email, UserFullName: fullName})
	}
	return result, nil
}
