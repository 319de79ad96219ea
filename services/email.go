package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"risehub/logger"
)

// EmailSendEvent is the payload queued on the email topic.
type EmailSendEvent struct {
	Event     string `json:"event"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// EventEmailSend tags queued mail on the email topic.
const EventEmailSend = "email.send"

// Publisher is the producer side of the message queue.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// KafkaMailQueue is a Mailer that queues emails on a topic instead of
// sending them. A consumer running EmailSendHandler does the delivery.
type KafkaMailQueue struct {
	pub   Publisher
	topic string
	now   Clock
}

func NewKafkaMailQueue(pub Publisher, topic string, now Clock) *KafkaMailQueue {
	return &KafkaMailQueue{pub: pub, topic: topic, now: now}
}

func (q *KafkaMailQueue) Send(ctx context.Context, e Email) error {
	event := EmailSendEvent{
		Event:     EventEmailSend,
		Recipient: e.To,
		Subject:   e.Subject,
		Body:      e.Body,
		Timestamp: q.now().UTC().Format(time.RFC3339),
	}

	if err := q.pub.Publish(ctx, q.topic, "email-"+e.To, event); err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}

	logger.Debug("Email event queued to %s for %s", q.topic, e.To)
	return nil
}

// EmailSendHandler decodes an email.send payload and delivers it with m.
func EmailSendHandler(m Mailer) func(ctx context.Context, payload []byte) error {
	return func(ctx context.Context, payload []byte) error {
		var event EmailSendEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("error unmarshaling email event: %w", err)
		}
		if event.Recipient == "" {
			return fmt.Errorf("invalid recipient in email event")
		}
		if event.Subject == "" {
			return fmt.Errorf("invalid subject in email event")
		}
		if event.Body == "" {
			return fmt.Errorf("invalid body in email event")
		}
		return m.Send(ctx, Email{To: event.Recipient, Subject: event.Subject, Body: event.Body})
	}
}
