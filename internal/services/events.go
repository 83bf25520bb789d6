package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"matchgraph/internal/kafka"
)

const (
	EventInteractionCreated   = "interaction.created"
	EventInteractionResponded = "interaction.responded"
	EventRatingAdded          = "rating.added"
	EventEndorsementUpserted  = "endorsement.upserted"
)

// DomainEvent is the JSON body written to the events topic after a committed change.
type DomainEvent struct {
	Type      string      `json:"type"`
	EntityID  uuid.UUID   `json:"entityId"`
	ActorID   uuid.UUID   `json:"actorId"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// eventEmitter publishes domain events. It is only called after a transaction has
// committed and never fails the caller: a lost event is logged and dropped.
type eventEmitter struct {
	producer kafka.MessageProducer
	topic    string
}

func newEventEmitter(producer kafka.MessageProducer, topic string) *eventEmitter {
	if producer == nil {
		producer = kafka.NewNoopProducer()
	}
	return &eventEmitter{producer: producer, topic: topic}
}

func (e *eventEmitter) emit(ctx context.Context, event DomainEvent) {
	fields := log.Fields{"event": event.Type, "entity_id": event.EntityID, "topic": e.topic}

	payload, err := json.Marshal(event)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("failed to marshal domain event")
		return
	}
	if err := e.producer.SendMessage(ctx, e.topic, []byte(event.EntityID.String()), payload); err != nil {
		log.WithFields(fields).WithError(err).Warn("failed to publish domain event")
		return
	}
	log.WithFields(fields).Debug("domain event published")
}
