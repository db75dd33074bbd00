package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/run-advisory-service/internal/config"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

// Writer publishes advisory notifications to a Kafka topic.
// It implements advisor.Notifier.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer. The topic is taken from each
// notification, so one writer can serve any NOTIFY_TOPIC.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.HTTPTimeout,
	}
	return &Writer{writer: w, logger: logger}
}

// Notify publishes a single notification and waits for all in-sync replicas
// to acknowledge it.
func (w *Writer) Notify(ctx context.Context, n domain.Notification) error {
	msg, err := serializeToMessage(n)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", n.Topic, err)
	}
	w.logger.Debug("notification published", "topic", n.Topic, "run_id", n.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a notification into a Kafka message keyed by
// run ID.
func serializeToMessage(n domain.Notification) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification: %w", err)
	}
	return kafkago.Message{
		Topic: n.Topic,
		Key:   []byte(n.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "icon", Value: []byte(n.Icon.String())},
			{Key: "title", Value: []byte(n.Title)},
		},
	}, nil
}
