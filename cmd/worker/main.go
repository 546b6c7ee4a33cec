// Worker consumes attendance events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, ATTENDANCE_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"biometric-attendance/backend/internal/config"
	"biometric-attendance/backend/internal/telemetry/domain"
	"biometric-attendance/backend/internal/telemetry/loki"
	"biometric-attendance/backend/internal/telemetry/producer"
)

// summaryEvery is how often the worker logs per-type push counts.
const summaryEvery = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.EventsTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	client := &http.Client{Timeout: 10 * time.Second}
	log.Printf("worker: consuming from %s (group %s), pushing to %s", cfg.EventsTopic, cfg.KafkaGroupID, cfg.LokiURL)

	pushed := map[string]int{}
	lastSummary := time.Now()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logSummary(pushed)
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		// Messages from older producers carry no header; Loki labels are then taken from the value.
		if t := producer.EventTypeOf(msg); t != "" && !domain.KnownType(t) {
			log.Printf("worker: skipping unknown event type %q (partition %d offset %d)", t, msg.Partition, msg.Offset)
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := loki.PushEventJSON(pushCtx, client, cfg.LokiURL, msg.Value); err != nil {
			log.Printf("worker: loki push failed (partition %d offset %d): %v", msg.Partition, msg.Offset, err)
		} else {
			pushed[producer.EventTypeOf(msg)]++
		}
		pushCancel()

		if time.Since(lastSummary) >= summaryEvery {
			logSummary(pushed)
			pushed = map[string]int{}
			lastSummary = time.Now()
		}
	}
}

func logSummary(pushed map[string]int) {
	if len(pushed) == 0 {
		return
	}
	log.Printf("worker: pushed started=%d ended=%d marked=%d failed=%d untyped=%d",
		pushed[domain.EventSessionStarted], pushed[domain.EventSessionEnded],
		pushed[domain.EventPresenceMarked], pushed[domain.EventCheckinFailed], pushed[""])
}
