// Command matrix renders the weather forecast on an LED matrix.
//
// Configuration comes from the environment (see internal/config). With
// DRIVER=terminal the panel is previewed in the terminal; tcell draws on the
// tty, so redirect stdout to keep logs off the preview:
//
//	DRIVER=terminal FORECAST_PATH=./forecast go run ./cmd/matrix > matrix.log
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-matrix/internal/adapter/discard"
	"github.com/couchcryptid/storm-matrix/internal/adapter/file"
	httpadapter "github.com/couchcryptid/storm-matrix/internal/adapter/http"
	"github.com/couchcryptid/storm-matrix/internal/adapter/httpsource"
	kafkaadapter "github.com/couchcryptid/storm-matrix/internal/adapter/kafka"
	"github.com/couchcryptid/storm-matrix/internal/adapter/terminal"
	"github.com/couchcryptid/storm-matrix/internal/adapter/ws281x"
	"github.com/couchcryptid/storm-matrix/internal/config"
	"github.com/couchcryptid/storm-matrix/internal/engine"
	"github.com/couchcryptid/storm-matrix/internal/forecast"
	"github.com/couchcryptid/storm-matrix/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("storm matrix stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource := newSource(ctx, cfg, logger, metrics)
	defer closeSource()

	driver, err := newDriver(cfg, stop, logger)
	if err != nil {
		return err
	}
	if err := driver.Init(); err != nil {
		return fmt.Errorf("init %s driver: %w", cfg.Driver, err)
	}

	store := forecast.NewStore()
	refresher := forecast.NewRefresher(source, store, cfg.Engine.RefreshFatal, nil, logger, metrics)

	// The panel never starts without a forecast.
	startCtx, cancel := context.WithTimeout(ctx, cfg.ForecastTimeout)
	err = refresher.Refresh(startCtx)
	cancel()
	if err != nil {
		return errors.Join(fmt.Errorf("initial forecast: %w", err), driver.Shutdown())
	}

	eng := engine.New(cfg.Engine, driver, store, refresher, nil, logger, metrics)
	eng.Prime()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, eng, store, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := eng.Run(ctx)
	logger.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	return runErr
}

// newSource builds the configured forecast source. The returned func releases
// it; for Kafka it also stops the background consumer.
func newSource(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (forecast.Source, func()) {
	switch cfg.ForecastSource {
	case config.SourceHTTP:
		logger.Info("forecast source: http", "url", cfg.ForecastURL)
		return httpsource.NewClient(cfg.ForecastURL, cfg.ForecastRecords, cfg.ForecastTimeout, logger), func() {}

	case config.SourceKafka:
		logger.Info("forecast source: kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaForecastTopic)
		reader := kafkaadapter.NewReader(cfg.KafkaBrokers, cfg.KafkaForecastTopic, cfg.KafkaGroupID, cfg.ForecastRecords, logger, metrics)
		consumeCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := reader.Run(consumeCtx); err != nil {
				logger.Error("forecast consumer error", "error", err)
			}
		}()
		return reader, func() {
			cancel()
			<-done
			if err := reader.Close(); err != nil {
				logger.Error("kafka reader close error", "error", err)
			}
		}

	default:
		logger.Info("forecast source: file", "path", cfg.ForecastPath)
		return file.NewSource(cfg.ForecastPath, cfg.ForecastRecords), func() {}
	}
}

func newDriver(cfg *config.Config, quit func(), logger *slog.Logger) (engine.Driver, error) {
	switch cfg.Driver {
	case config.DriverTerminal:
		return terminal.New(cfg.Engine.Width, cfg.Engine.Order, quit, logger)
	case config.DriverDiscard:
		return discard.New(), nil
	default:
		return ws281x.New(ws281x.Options{
			LEDCount:   cfg.Engine.Width * cfg.Engine.Height,
			GPIOPin:    cfg.LED.GPIOPin,
			DMA:        cfg.LED.DMA,
			Frequency:  cfg.LED.Frequency,
			Brightness: cfg.LED.Brightness,
		}, logger), nil
	}
}
