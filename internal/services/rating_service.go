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

// RatingService records participants' scores for accepted interactions.
type RatingService interface {
	AddRating(ctx context.Context, interactionID, raterID uuid.UUID, rating int, comment *string) (*models.Rating, error)
	ListRatings(ctx context.Context, interactionID uuid.UUID) ([]models.Rating, error)
	ListRatingsWithRater(ctx context.Context, interactionID uuid.UUID) ([]models.RatingWithRater, error)
}

type ratingService struct {
	db       *gorm.DB
	repo     storage.RatingRepository
	userRepo storage.UserRepository
	events   *eventEmitter
	now      func() time.Time
	// txRepo builds the repository used inside AddRating's transaction.
	txRepo func(tx *gorm.DB) storage.RatingRepository
}

// NewRatingService creates a new RatingService instance.
func NewRatingService(db *gorm.DB, producer kafka.MessageProducer, kafkaCfg config.KafkaConfig) RatingService {
	return &ratingService{
		db:       db,
		repo:     storage.NewGormRatingRepository(db),
		userRepo: storage.NewGormUserRepository(db),
		events:   newEventEmitter(producer, kafkaCfg.EventsTopic),
		now:      utcNow,
		txRepo:   storage.NewGormRatingRepository,
	}
}

// AddRating stores the rater's single rating for an accepted interaction they took part in.
func (s *ratingService) AddRating(ctx context.Context, interactionID, raterID uuid.UUID, rating int, comment *string) (*models.Rating, error) {
	if err := validation.ValidateRating(rating, comment); err != nil {
		return nil, validationError(err)
	}

	record := &models.Rating{
		InteractionID: interactionID,
		RaterID:       raterID,
		Score:         rating,
		Comment:       comment,
		CreatedAt:     s.now(),
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interaction, err := storage.NewGormInteractionRepository(tx).GetByID(ctx, interactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInteractionNotFound
			}
			log.WithError(err).WithField("interaction_id", interactionID).Error("failed to load interaction for rating")
			return fmt.Errorf("load interaction: %w", err)
		}
		if interaction.Status != models.InteractionStatusAccepted {
			return ErrInteractionNotAccepted
		}
		if !interaction.IsParticipant(raterID) {
			return ErrNotInteractionMember
		}

		txRepo := s.txRepo(tx)
		existing, err := txRepo.FindByInteractionAndRater(ctx, interactionID, raterID)
		if err != nil {
			return fmt.Errorf("check existing rating: %w", err)
		}
		if existing != nil {
			return ErrRatingExists
		}

		if err := txRepo.Create(ctx, record); err != nil {
			// a concurrent insert lost the race on uq_rating_interaction_rater
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRatingExists
			}
			log.WithError(err).WithFields(log.Fields{"interaction_id": interactionID, "rater_id": raterID}).
				Error("failed to create rating")
			return fmt.Errorf("create rating: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.WithFields(log.Fields{
		"rating_id":      record.ID,
		"interaction_id": interactionID,
		"rater_id":       raterID,
		"rating":         rating,
	}).Info("rating added")

	s.events.emit(ctx, DomainEvent{
		Type:      EventRatingAdded,
		EntityID:  record.ID,
		ActorID:   raterID,
		Payload:   record,
		Timestamp: record.CreatedAt,
	})
	return record, nil
}

// ListRatings returns every rating of the interaction in creation order. Callers decide
// who may see them.
func (s *ratingService) ListRatings(ctx context.Context, interactionID uuid.UUID) ([]models.Rating, error) {
	ratings, err := s.repo.ListByInteraction(ctx, interactionID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func (s *ratingService) ListRatingsWithRater(ctx context.Context, interactionID uuid.UUID) ([]models.RatingWithRater, error) {
	ratings, err := s.ListRatings(ctx, interactionID)
	if err != nil {
		return nil, err
	}

	raterIDs := make([]uuid.UUID, 0, len(ratings))
	for _, r := range ratings {
		raterIDs = append(raterIDs, r.RaterID)
	}
	dir, err := loadUserDirectory(ctx, s.userRepo, raterIDs)
	if err != nil {
		return nil, err
	}

	result := make([]models.RatingWithRater, 0, len(ratings))
	for _, r := range ratings {
		email, fullName := dir.lookup(r.RaterID)
		result = append(result, models.RatingWithRater{Rating: r, RaterEmail: email, RaterFullName: fullName})
	}
	return result, nil
}
