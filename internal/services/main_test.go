package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"matchgraph/internal/config"
	"matchgraph/internal/models"
	"matchgraph/internal/storage"
)

const testTopic = "matchgraph-events-test"

var testKafkaConfig = config.KafkaConfig{EventsTopic: testTopic}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.InitDB(config.DatabaseConfig{Type: "sqlite", DBName: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	fullName := "User " + name
	user := &models.User{Email: fmt.Sprintf("%s@example.com", name), FullName: &fullName, IsActive: true}
	require.NoError(t, storage.NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

// stepClock advances by one second on every call.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2025, 12, 11, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type sentMessage struct {
	Topic   string
	Key     string
	Payload []byte
}

// recordingProducer captures every message; when err is set it fails every send.
type recordingProducer struct {
	mu       sync.Mutex
	messages []sentMessage
	err      error
}

func (p *recordingProducer) SendMessage(_ context.Context, topic string, key []byte, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, sentMessage{Topic: topic, Key: string(key), Payload: payload})
	return nil
}

func (p *recordingProducer) Close() {}

func (p *recordingProducer) events(t *testing.T) []DomainEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]DomainEvent, 0, len(p.messages))
	for _, m := range p.messages {
		var e DomainEvent
		require.NoError(t, json.Unmarshal(m.Payload, &e))
		out = append(out, e)
	}
	return out
}

var errBrokerDown = errors.New("broker down")

type testServices struct {
	db           *gorm.DB
	producer     *recordingProducer
	interactions *interactionService
	ratings      *ratingService
	endorsements *endorsementService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := setupTestDB(t)
	producer := &recordingProducer{}
	clock := newStepClock()

	interactions := NewInteractionService(db, producer, testKafkaConfig, config.PaginationConfig{DefaultLimit: 100, MaxLimit: 500}).(*interactionService)
	interactions.now = clock.Now
	ratings := NewRatingService(db, producer, testKafkaConfig).(*ratingService)
	ratings.now = clock.Now
	endorsements := NewEndorsementService(db, producer, testKafkaConfig).(*endorsementService)
	endorsements.now = clock.Now

	return &testServices{
		db:           db,
		producer:     producer,
		interactions: interactions,
		ratings:      ratings,
		endorsements: endorsements,
	}
}

func strPtr(s string) *string { return &s }

// missingPendingRepo never finds a pending interaction, leaving the unique index as the only guard.
type missingPendingRepo struct {
	storage.InteractionRepository
}

func (missingPendingRepo) FindPending(context.Context, uuid.UUID, uuid.UUID) (*models.Interaction, error) {
	return nil, nil
}

// missingRatingRepo never finds an existing rating, leaving the unique index as the only guard.
type missingRatingRepo struct {
	storage.RatingRepository
}

func (missingRatingRepo) FindByInteractionAndRater(context.Context, uuid.UUID, uuid.UUID) (*models.Rating, error) {
	return nil, nil
}
