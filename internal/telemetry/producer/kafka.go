// Package producer writes attendance events to Kafka.
package producer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"biometric-attendance/backend/internal/telemetry/domain"
)

// KafkaProducer implements telemetry.EventEmitter using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer creates a Kafka producer that writes attendance events to the given topic.
// Returns (nil, nil) when brokers or topic is empty. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer, topic: topic}, nil
}

// HeaderEventType carries the event type so consumers can route without decoding the value.
const HeaderEventType = "event_type"

// Emit writes the event to the Kafka topic. See message for keying.
func (p *KafkaProducer) Emit(ctx context.Context, event *domain.Event) error {
	if p == nil || p.writer == nil || event == nil {
		return nil
	}
	msg, err := message(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		log.Printf("telemetry: kafka emit %s failed: %v", event.Type, err)
		return err
	}
	return nil
}

// EventTypeOf returns the event type header of msg, or "" when absent.
func EventTypeOf(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == HeaderEventType {
			return string(h.Value)
		}
	}
	return ""
}

// message encodes event as JSON. The key is the session id so one session's events stay ordered
// within a partition; events without a session (e.g. a rejected start) fall back to the course id.
func message(event *domain.Event) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	key := event.SessionID
	if key == "" {
		key = event.CourseID
	}
	msg := kafka.Message{
		Value:   payload,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(event.Type)}},
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

// Close closes the Kafka writer. Safe to call multiple times.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
