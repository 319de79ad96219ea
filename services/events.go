package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"risehub/logger"
)

// Domain event types published to the events topic.
const (
	EventEnrollmentCreated = "enrollment.created"
	EventEnrollmentStatus  = "enrollment.status_changed"
	EventWebinarRegistered = "webinar.registered"
	EventLeadCreated       = "lead.created"
)

// DomainEvent is the envelope for everything on the events topic.
type DomainEvent struct {
	EventID   string                 `json:"event_id"`
	Event     string                 `json:"event"`
	Key       string                 `json:"key"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventBus publishes domain events after the change they describe has
// committed. Publishing is non-blocking and a failure never affects the
// caller. A nil *EventBus publishes nothing.
type EventBus struct {
	pub   Publisher
	topic string
	now   Clock
	wg    sync.WaitGroup
}

func NewEventBus(pub Publisher, topic string, now Clock) *EventBus {
	return &EventBus{pub: pub, topic: topic, now: now}
}

// Emit publishes event in the background, keyed for partitioning.
func (b *EventBus) Emit(event, key string, data map[string]interface{}) {
	if b == nil || b.pub == nil {
		return
	}

	evt := DomainEvent{
		EventID:   uuid.NewString(),
		Event:     event,
		Key:       key,
		Data:      data,
		Timestamp: b.now().UTC(),
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := b.pub.Publish(ctx, b.topic, key, evt); err != nil {
			logger.Warn("Failed to publish %s event %s: %v", event, key, err)
			return
		}
		logger.Debug("Published %s event to topic '%s' (%s)", event, b.topic, key)
	}()
}

// Wait blocks until every emitted event has been attempted.
func (b *EventBus) Wait() {
	if b == nil {
		return
	}
	b.wg.Wait()
}

func entityKey(kind string, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}
