package analytics

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/dropfour/server/internal/domain"
)

// Producer publishes game events to Kafka. Analytics is best-effort: a
// missing broker disables it, and publish failures are logged, never
// surfaced to gameplay.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a producer. An empty broker returns a disabled
// producer whose Publish is a no-op.
func NewProducer(broker, topic string) *Producer {
	if broker == "" {
		log.Println("[KAFKA] No broker configured, analytics disabled")
		return &Producer{}
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("[KAFKA] Failed to publish %d event(s): %v", len(messages), err)
			}
		},
	}

	log.Printf("[KAFKA] Producer ready (broker=%s topic=%s)", broker, topic)
	return &Producer{writer: writer}
}

// Publish queues one event, keyed by game id so per-game ordering is kept
// within a partition. Never blocks on the broker.
func (p *Producer) Publish(event domain.GameEvent) {
	if p == nil || p.writer == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("[KAFKA] Failed to encode %s event: %v", event.Type, err)
		return
	}

	err = p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.GameID),
		Value: value,
	})
	if err != nil {
		log.Printf("[KAFKA] Failed to queue %s event: %v", event.Type, err)
	}
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
