package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/couchcryptid/storm-matrix/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes forecast messages and keeps the newest valid one.
// It implements forecast.Source.
type Reader struct {
	reader  *kafkago.Reader
	records int
	logger  *slog.Logger
	metrics *observability.Metrics

	latest    atomic.Pointer[domain.Forecast]
	first     chan struct{}
	firstOnce sync.Once
}

// NewReader creates a consumer-group reader for the forecast topic. A new
// group starts from the oldest retained message so the newest forecast on a
// compacted topic is always replayed.
func NewReader(brokers []string, topic, groupID string, records int, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{
		reader:  r,
		records: records,
		logger:  logger,
		metrics: metrics,
		first:   make(chan struct{}),
	}
}

// Run consumes until ctx is cancelled. Malformed messages are logged,
// counted and committed so they are not redelivered.
func (r *Reader) Run(ctx context.Context) error {
	r.logger.Info("forecast consumer started", "topic", r.reader.Config().Topic, "group_id", r.reader.Config().GroupID)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("forecast consumer stopping", "reason", ctx.Err())
				return nil
			}
			r.logger.Error("fetch forecast message failed", "error", err)
			if !retry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		r.accept(msg)

		if err := r.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			r.logger.Warn("commit offset failed", "error", err,
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

func (r *Reader) accept(msg kafkago.Message) {
	f, err := mapMessageToForecast(msg, r.records)
	if err != nil {
		r.metrics.ForecastMessages.WithLabelValues("rejected").Inc()
		r.logger.Warn("invalid forecast message, skipping",
			"error", err,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return
	}
	r.metrics.ForecastMessages.WithLabelValues("accepted").Inc()
	r.store(f)
}

func (r *Reader) store(f domain.Forecast) {
	r.latest.Store(&f)
	r.firstOnce.Do(func() { close(r.first) })
}

// Fetch returns the newest forecast, waiting for the first one to arrive
// if none has been consumed yet.
func (r *Reader) Fetch(ctx context.Context) (domain.Forecast, error) {
	select {
	case <-r.first:
		return *r.latest.Load(), nil
	case <-ctx.Done():
		return domain.Forecast{}, fmt.Errorf("wait for forecast message: %w", ctx.Err())
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToForecast decodes a message value in the binary record layout.
// The fetched_at header, when present, overrides the broker timestamp.
func mapMessageToForecast(msg kafkago.Message, records int) (domain.Forecast, error) {
	f, err := domain.DecodeForecast(msg.Value, records)
	if err != nil {
		return domain.Forecast{}, err
	}

	f.FetchedAt = msg.Time
	for _, h := range msg.Headers {
		switch h.Key {
		case headerFetchedAt:
			ts, err := time.Parse(time.RFC3339, string(h.Value))
			if err != nil {
				return domain.Forecast{}, fmt.Errorf("parse %s header: %w", headerFetchedAt, err)
			}
			f.FetchedAt = ts
		case headerSource:
			f.Source = string(h.Value)
		}
	}
	if f.Source == "" {
		f.Source = fmt.Sprintf("kafka:%s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
	}
	return f, nil
}
