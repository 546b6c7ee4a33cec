package producer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"biometric-attendance/backend/internal/telemetry/domain"
)

func TestNewKafkaProducer_DisabledWithoutBrokersOrTopic(t *testing.T) {
	tests := []struct {
		name    string
		brokers []string
		topic   string
	}{
		{"no brokers", nil, "attendance-events"},
		{"no topic", []string{"localhost:9092"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewKafkaProducer(tt.brokers, tt.topic)
			if err != nil {
				t.Fatalf("NewKafkaProducer: %v", err)
			}
			if p != nil {
				t.Fatal("producer should be nil when disabled")
			}
			// A nil producer is safe to use.
			if err := p.Emit(context.Background(), &domain.Event{Type: domain.EventSessionStarted}); err != nil {
				t.Errorf("nil Emit: %v", err)
			}
			if err := p.Close(); err != nil {
				t.Errorf("nil Close: %v", err)
			}
		})
	}
}

func TestNewKafkaProducer_Configured(t *testing.T) {
	p, err := NewKafkaProducer([]string{"localhost:9092"}, "attendance-events")
	if err != nil {
		t.Fatalf("NewKafkaProducer: %v", err)
	}
	if p == nil || p.writer == nil {
		t.Fatal("expected configured producer")
	}
	if p.writer.Topic != "attendance-events" {
		t.Errorf("Topic = %q", p.writer.Topic)
	}
	if err := p.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil) = %v, want nil", err)
	}
	_ = p.Close()
}

func TestMessage_KeyAndHeaders(t *testing.T) {
	at := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		event   *domain.Event
		wantKey string
	}{
		{"session key", &domain.Event{Type: domain.EventPresenceMarked, SessionID: "ses-1", CourseID: "c-1", OccurredAt: at}, "ses-1"},
		{"course fallback", &domain.Event{Type: domain.EventCheckinFailed, CourseID: "c-1", OccurredAt: at}, "c-1"},
		{"no key", &domain.Event{Type: domain.EventCheckinFailed, OccurredAt: at}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := message(tt.event)
			if err != nil {
				t.Fatalf("message: %v", err)
			}
			if string(msg.Key) != tt.wantKey {
				t.Errorf("Key = %q, want %q", msg.Key, tt.wantKey)
			}
			if got := EventTypeOf(msg); got != tt.event.Type {
				t.Errorf("EventTypeOf = %q, want %q", got, tt.event.Type)
			}
			if len(msg.Headers) != 1 || msg.Headers[0].Key != HeaderEventType || string(msg.Headers[0].Value) != tt.event.Type {
				t.Errorf("Headers = %+v", msg.Headers)
			}
			var back domain.Event
			if err := json.Unmarshal(msg.Value, &back); err != nil {
				t.Fatalf("value is not JSON: %v", err)
			}
			if back.Type != tt.event.Type || !back.OccurredAt.Equal(at) {
				t.Errorf("value = %+v", back)
			}
		})
	}
}

func TestEventTypeOf_MissingHeader(t *testing.T) {
	if got := EventTypeOf(kafka.Message{Value: []byte("{}")}); got != "" {
		t.Errorf("EventTypeOf = %q, want empty", got)
	}
}
