package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message key and headers of a forecast message. Every forecast shares the
// same key so a compacted topic keeps only the newest.
const (
	messageKey      = "forecast"
	headerFetchedAt = "fetched_at"
	headerSource    = "source"
	headerRecords   = "records"
)

var errNoSamples = errors.New("forecast has no samples")

// Writer publishes forecasts to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the forecast topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish sends one forecast in the binary record layout.
func (w *Writer) Publish(ctx context.Context, f domain.Forecast) error {
	msg, err := serializeToMessage(f)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	w.logger.Info("forecast published", "topic", w.writer.Topic, "samples", len(f.Samples))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes a forecast into a Kafka message.
func serializeToMessage(f domain.Forecast) (kafkago.Message, error) {
	if len(f.Samples) == 0 {
		return kafkago.Message{}, errNoSamples
	}
	headers := []kafkago.Header{
		{Key: headerRecords, Value: []byte(strconv.Itoa(len(f.Samples)))},
	}
	if !f.FetchedAt.IsZero() {
		headers = append(headers, kafkago.Header{Key: headerFetchedAt, Value: []byte(f.FetchedAt.UTC().Format(time.RFC3339))})
	}
	if f.Source != "" {
		headers = append(headers, kafkago.Header{Key: headerSource, Value: []byte(f.Source)})
	}
	return kafkago.Message{
		Key:     []byte(messageKey),
		Value:   domain.EncodeForecast(f),
		Headers: headers,
	}, nil
}
