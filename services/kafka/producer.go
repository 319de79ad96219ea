package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"risehub/logger"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON messages with retry and exponential backoff.
type Producer struct {
	mu        sync.Mutex
	writer    messageWriter
	connected bool

	attempts int
	backoff  func(attempt int) time.Duration
}

// NewProducer builds a producer for the given brokers. It returns nil when
// no broker is configured, which disables publishing.
func NewProducer(brokers []string) *Producer {
	if len(brokers) == 0 {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return nil
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		Async:        false,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("Kafka producer initialized. Brokers=%v", brokers)
	return newProducer(w)
}

func newProducer(w messageWriter) *Producer {
	return &Producer{
		writer:    w,
		connected: true,
		attempts:  3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(math.Pow(2, float64(attempt))) * time.Second
		},
	}
}

// Publish marshals value to JSON and publishes to the given topic with key.
// It makes up to three attempts, backing off 1s then 2s between them.
func (p *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshaling Kafka message: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < p.attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.writer.WriteMessages(attemptCtx, msg)
		cancel()

		if err == nil {
			p.connected = true
			return nil
		}

		lastErr = err
		p.connected = false
		logger.Warn("Kafka publish attempt %d/%d to %s failed: %v", attempt+1, p.attempts, topic, err)

		if attempt < p.attempts-1 {
			select {
			case <-time.After(p.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("kafka publish to %s failed after %d attempts: %w", topic, p.attempts, lastErr)
}

// IsConnected reports whether the last publish succeeded.
func (p *Producer) IsConnected() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Close gracefully closes the Kafka writer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Close()
}

// EnsureTopics creates the given topics in the background, retrying with
// backoff while the brokers come up. Existing topics are left alone.
func EnsureTopics(brokers []string, topics []string) {
	if len(brokers) == 0 || len(topics) == 0 {
		return
	}

	go func() {
		const maxRetries = 5
		for attempt := 0; attempt < maxRetries; attempt++ {
			time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * time.Second)

			conn, err := kafka.Dial("tcp", brokers[0])
			if err != nil {
				if attempt == maxRetries-1 {
					logger.Warn("Could not connect to Kafka broker for topic creation after %d attempts: %v", maxRetries, err)
				}
				continue
			}

			created := 0
			for _, topic := range topics {
				err := conn.CreateTopics(kafka.TopicConfig{
					Topic:             topic,
					NumPartitions:     1,
					ReplicationFactor: 1,
				})
				if err == nil || strings.Contains(err.Error(), "already exists") {
					created++
				}
			}
			conn.Close()

			if created == len(topics) {
				logger.Info("Kafka topics ready: %v", topics)
				return
			}
		}
	}()
}
