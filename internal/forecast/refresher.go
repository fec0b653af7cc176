package forecast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/couchcryptid/storm-matrix/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Source yields a complete forecast. Implementations read a file, an HTTP
// endpoint, or the latest Kafka message.
type Source interface {
	Fetch(ctx context.Context) (domain.Forecast, error)
}

// Refresher pulls from a Source into a Store.
//
// The first refresh must succeed; its error is always returned. After that a
// failed refresh keeps the last good forecast and is only logged, unless
// fatal is set, in which case every failure is returned to the caller.
type Refresher struct {
	source  Source
	store   *Store
	fatal   bool
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRefresher wires a source to a store. A nil clock uses real time.
func NewRefresher(source Source, store *Store, fatal bool, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{
		source:  source,
		store:   store,
		fatal:   fatal,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Refresh fetches once and publishes on success.
func (r *Refresher) Refresh(ctx context.Context) error {
	f, err := r.source.Fetch(ctx)
	if err != nil {
		r.metrics.ForecastRefreshes.WithLabelValues("error").Inc()
		if !r.store.Loaded() || r.fatal {
			return fmt.Errorf("refresh forecast: %w", err)
		}
		r.logger.Warn("forecast refresh failed, keeping previous forecast",
			"error", err,
			"fetched_at", r.store.Load().FetchedAt,
		)
		return nil
	}

	if f.FetchedAt.IsZero() {
		f.FetchedAt = r.clock.Now()
	}
	r.store.Publish(f)

	r.metrics.ForecastRefreshes.WithLabelValues("success").Inc()
	r.metrics.ForecastLastSuccess.Set(float64(f.FetchedAt.Unix()))
	r.logger.Info("forecast refreshed", "source", f.Source, "samples", len(f.Samples))
	for i, s := range f.Samples {
		r.logger.Debug("forecast sample",
			"row", i,
			"temperature", s.Temperature,
			"wind", s.Wind,
			"precipitation", s.Precipitation,
		)
	}
	return nil
}
