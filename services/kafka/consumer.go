package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"risehub/logger"
)

// Handler processes the raw JSON value of one message.
type Handler func(ctx context.Context, payload []byte) error

// Consumer reads one topic as part of a consumer group and routes each
// message to the handler registered for its "event" field. Failed messages
// are logged and skipped.
type Consumer struct {
	mu       sync.Mutex
	reader   *kafka.Reader
	handlers map[string]Handler
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewConsumer returns nil when no broker is configured.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	if len(brokers) == 0 {
		logger.Info("Kafka consumer is disabled (KAFKA_BROKERS is empty)")
		return nil
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:          brokers,
		Topic:            topic,
		GroupID:          groupID,
		StartOffset:      kafka.LastOffset,
		CommitInterval:   time.Second,
		MaxBytes:         10e6,
		SessionTimeout:   20 * time.Second,
		ReadBackoffMin:   100 * time.Millisecond,
		ReadBackoffMax:   1 * time.Second,
		QueueCapacity:    100,
		RebalanceTimeout: 60 * time.Second,
	})

	logger.Info("Kafka consumer initialized. Brokers=%v, Topic=%s, ConsumerGroup=%s", brokers, topic, groupID)
	c := newConsumer()
	c.reader = reader
	return c
}

func newConsumer() *Consumer {
	return &Consumer{handlers: map[string]Handler{}}
}

// Handle registers fn for messages whose "event" field equals eventType.
func (c *Consumer) Handle(eventType string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = fn
}

// Dispatch routes one message value to its handler.
func (c *Consumer) Dispatch(ctx context.Context, payload []byte) error {
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if envelope.Event == "" {
		return fmt.Errorf("message does not contain event type")
	}

	c.mu.Lock()
	handler, ok := c.handlers[envelope.Event]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown event type: %s", envelope.Event)
	}
	return handler(ctx, payload)
}

// Start consumes messages on a goroutine until Stop is called.
func (c *Consumer) Start() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		logger.Warn("Consumer already running")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true
	c.mu.Unlock()

	go c.consume(ctx)
	logger.Info("Kafka consumer started")
}

func (c *Consumer) consume(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			if strings.Contains(err.Error(), "Group Coordinator Not Available") {
				time.Sleep(500 * time.Millisecond)
				continue
			}
			logger.Warn("Kafka read failed: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if err := c.Dispatch(ctx, msg.Value); err != nil {
			logger.Error("Dropping message from %s (key %s): %v", msg.Topic, string(msg.Key), err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Warn("Kafka commit failed: %v", err)
		}
	}
}

// Stop ends consumption and closes the reader.
func (c *Consumer) Stop() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	running, cancel, done := c.running, c.cancel, c.done
	c.mu.Unlock()

	if running {
		cancel()
		<-done
	}

	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("error closing consumer: %w", err)
	}
	logger.Info("Kafka consumer stopped")
	return nil
}

// IsRunning reports whether the consume loop is active.
func (c *Consumer) IsRunning() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
