package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	written  []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testProducer(w *fakeWriter) *Producer {
	p := newProducer(w)
	p.backoff = func(int) time.Duration { return time.Millisecond }
	return p
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	err := p.Publish(context.Background(), "emails", "email-ama@example.com", map[string]string{"event": "email.send"})
	require.NoError(t, err)
	require.Len(t, w.written, 1)

	msg := w.written[0]
	assert.Equal(t, "emails", msg.Topic)
	assert.Equal(t, "email-ama@example.com", string(msg.Key))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "email.send", decoded["event"])
	assert.True(t, p.IsConnected())
}

func TestPublishRetriesThenSucceeds(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := testProducer(w)

	require.NoError(t, p.Publish(context.Background(), "emails", "k", "v"))
	assert.Len(t, w.written, 1)
}

func TestPublishGivesUpAfterThreeAttempts(t *testing.T) {
	w := &fakeWriter{failures: 5}
	p := testProducer(w)

	err := p.Publish(context.Background(), "emails", "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 2, w.failures)
	assert.False(t, p.IsConnected())
}

func TestNilProducerIsNoop(t *testing.T) {
	var p *Producer
	assert.NoError(t, p.Publish(context.Background(), "emails", "k", "v"))
	assert.NoError(t, p.Close())
	assert.False(t, p.IsConnected())
	assert.Nil(t, NewProducer(nil))
}

func TestDispatchRoutesByEventType(t *testing.T) {
	c := newConsumer()

	var got []byte
	c.Handle("email.send", func(_ context.Context, payload []byte) error {
		got = payload
		return nil
	})

	payload := []byte(`{"event":"email.send","recipient":"ama@example.com"}`)
	require.NoError(t, c.Dispatch(context.Background(), payload))
	assert.Equal(t, payload, got)
}

func TestDispatchRejectsBadMessages(t *testing.T) {
	c := newConsumer()
	c.Handle("email.send", func(context.Context, []byte) error { return nil })

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"not json", `nope`, "unmarshal"},
		{"no event", `{"recipient":"x"}`, "event type"},
		{"unknown event", `{"event":"interview.schedule"}`, "unknown event type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Dispatch(context.Background(), []byte(tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDispatchReturnsHandlerError(t *testing.T) {
	c := newConsumer()
	boom := errors.New("smtp down")
	c.Handle("email.send", func(context.Context, []byte) error { return boom })

	assert.ErrorIs(t, c.Dispatch(context.Background(), []byte(`{"event":"email.send"}`)), boom)
}
