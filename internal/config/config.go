package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/couchcryptid/storm-matrix/internal/engine"
)

// Forecast sources.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// LED drivers.
const (
	DriverWS281x   = "ws281x"
	DriverTerminal = "terminal"
	DriverDiscard  = "discard"
)

// DefaultForecastPath is where the forecast fetcher drops its binary file.
const DefaultForecastPath = "/home/pi/rpi_ws281x/forecast"

// LED holds the ws281x strip wiring.
type LED struct {
	GPIOPin    int
	DMA        int
	Frequency  int
	Brightness int
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	Engine engine.Settings

	ForecastSource  string
	ForecastPath    string
	ForecastURL     string
	ForecastRecords int
	ForecastTimeout time.Duration

	KafkaBrokers       []string
	KafkaForecastTopic string
	KafkaGroupID       string

	Driver string
	LED    LED

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	forecastTimeout, err := parseDuration("FORECAST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	records, err := parseInt("FORECAST_RECORDS", settings.Height)
	if err != nil {
		return nil, err
	}

	led, err := loadLED()
	if err != nil {
		return nil, err
	}

	httpAddr := ":8080"
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		httpAddr = v
	}

	cfg := &Config{
		Engine: settings,

		ForecastSource:  strings.ToLower(sharedcfg.EnvOrDefault("FORECAST_SOURCE", SourceFile)),
		ForecastPath:    sharedcfg.EnvOrDefault("FORECAST_PATH", DefaultForecastPath),
		ForecastURL:     os.Getenv("FORECAST_URL"),
		ForecastRecords: records,
		ForecastTimeout: forecastTimeout,

		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaForecastTopic: sharedcfg.EnvOrDefault("KAFKA_FORECAST_TOPIC", "weather-forecast"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-matrix"),

		Driver: strings.ToLower(sharedcfg.EnvOrDefault("DRIVER", DriverWS281x)),
		LED:    led,

		HTTPAddr:        httpAddr,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ForecastSource {
	case SourceFile:
		if c.ForecastPath == "" {
			return errors.New("FORECAST_PATH is required for the file source")
		}
	case SourceHTTP:
		if c.ForecastURL == "" {
			return errors.New("FORECAST_URL is required for the http source")
		}
	case SourceKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka source")
		}
		if c.KafkaForecastTopic == "" {
			return errors.New("KAFKA_FORECAST_TOPIC is required for the kafka source")
		}
	default:
		return fmt.Errorf("unknown FORECAST_SOURCE %q", c.ForecastSource)
	}

	switch c.Driver {
	case DriverWS281x, DriverTerminal, DriverDiscard:
	default:
		return fmt.Errorf("unknown DRIVER %q", c.Driver)
	}

	if c.ForecastRecords <= 0 {
		return errors.New("FORECAST_RECORDS must be positive")
	}
	if c.LED.Brightness < 0 || c.LED.Brightness > 255 {
		return errors.New("LED_BRIGHTNESS must be between 0 and 255")
	}
	return nil
}

// loadSettings starts from MATRIX_PRESET and applies per-field overrides.
func loadSettings() (engine.Settings, error) {
	s, err := engine.Preset(sharedcfg.EnvOrDefault("MATRIX_PRESET", engine.PresetClassic))
	if err != nil {
		return engine.Settings{}, fmt.Errorf("invalid MATRIX_PRESET: %w", err)
	}

	var errs []error
	intVar := func(name string, dst *int) {
		v, err := parseInt(name, *dst)
		errs = append(errs, err)
		*dst = v
	}
	floatVar := func(name string, dst *float64) {
		v, err := parseFloat(name, *dst)
		errs = append(errs, err)
		*dst = v
	}

	intVar("MATRIX_WIDTH", &s.Width)
	intVar("MATRIX_HEIGHT", &s.Height)
	intVar("FRAME_RATE", &s.FrameRate)
	intVar("HEADER_ROWS", &s.HeaderRows)
	floatVar("TEMP_MIN", &s.TempMin)
	floatVar("TEMP_MAX", &s.TempMax)
	floatVar("FADE_DECAY", &s.DecayFactor)
	floatVar("FADE_RISE", &s.RiseFactor)
	floatVar("FADE_EDGE_DECAY", &s.EdgeDecayFactor)
	floatVar("WIND_DIVISOR", &s.WindDivisor)

	if v := os.Getenv("PALETTE"); v != "" {
		p, err := domain.ParsePalette(strings.Split(v, ","))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid PALETTE: %w", err))
		} else {
			s.Palette = p
		}
	}
	if v := os.Getenv("CHANNEL_ORDER"); v != "" {
		o, err := domain.ParseChannelOrder(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid CHANNEL_ORDER: %w", err))
		} else {
			s.Order = o
		}
	}

	interval, err := parseDuration("FORECAST_REFRESH_INTERVAL", s.RefreshInterval.String())
	errs = append(errs, err)
	s.RefreshInterval = interval

	fatal, err := parseBool("FORECAST_REFRESH_FATAL", s.RefreshFatal)
	errs = append(errs, err)
	s.RefreshFatal = fatal

	if err := errors.Join(errs...); err != nil {
		return engine.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return engine.Settings{}, fmt.Errorf("invalid matrix settings: %w", err)
	}
	return s, nil
}

func loadLED() (LED, error) {
	led := LED{GPIOPin: 18, DMA: 5, Frequency: 800000, Brightness: 255}
	var errs []error
	for name, dst := range map[string]*int{
		"LED_GPIO_PIN":   &led.GPIOPin,
		"LED_DMA":        &led.DMA,
		"LED_FREQUENCY":  &led.Frequency,
		"LED_BRIGHTNESS": &led.Brightness,
	} {
		v, err := parseInt(name, *dst)
		errs = append(errs, err)
		*dst = v
	}
	return led, errors.Join(errs...)
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", name, s)
	}
	return n, nil
}

func parseFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", name, s)
	}
	return f, nil
}

func parseBool(name string, def bool) (bool, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", name, s)
	}
	return b, nil
}

func parseDuration(name, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(name, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return d, nil
}
