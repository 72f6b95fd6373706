package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// StepCommitted is emitted after a step's rows and checkpoint are durable.
type StepCommitted struct {
	Instance    string    `json:"instance"`
	Table       string    `json:"table"`
	Date        string    `json:"date,omitempty"` // Incremental batches only, YYYY-MM-DD
	Rows        int       `json:"rows"`
	Fallback    bool      `json:"quotes_fallback"`
	CommittedAt time.Time `json:"committed_at"`
}

// Publisher delivers StepCommitted events.
type Publisher interface {
	Publish(ctx context.Context, ev StepCommitted) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, StepCommitted) error { return nil }
func (Nop) Close() error { return nil }

// messageWriter is the subset of *kafka.Writer used by Kafka.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON, keyed by table so a table's events stay ordered.
type Kafka struct {
	writer messageWriter
}

// NewKafka creates a publisher writing to topic.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Publish writes one event.
func (k *Kafka) Publish(ctx context.Context, ev StepCommitted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Table),
		Value: data,
		Time:  ev.CommittedAt,
	}); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Table, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
