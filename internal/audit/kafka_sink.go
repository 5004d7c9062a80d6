package audit

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"go-pos-ledger/internal/model"
)

// MessageWriter is the part of kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaSink publishes one message per entry, keyed by category.
type KafkaSink struct {
	writer MessageWriter
}

// NewKafkaWriter builds a writer for the audit topic.
func NewKafkaWriter(broker, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(broker),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, entry model.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(entry.Category),
		Value: payload,
		Time:  entry.Timestamp,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
