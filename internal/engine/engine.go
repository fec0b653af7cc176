// Package engine composes LED matrix frames from the current forecast and runs
// the fixed-rate render loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/couchcryptid/storm-matrix/internal/forecast"
	"github.com/couchcryptid/storm-matrix/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Driver transmits packed frames to the LEDs.
type Driver interface {
	Init() error
	Render(leds []domain.Packed) error
	Shutdown() error
}

// Refresher reloads the forecast store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Engine owns the frame buffer and the per-row animation state. Everything
// except CheckReadiness must be called from a single goroutine.
type Engine struct {
	settings  Settings
	driver    Driver
	store     *forecast.Store
	refresher Refresher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	frame   *domain.Frame
	rows    []RowState
	targets []domain.Color
	leds    []domain.Packed
	tick    uint64
	ready   atomic.Bool
}

// New creates an Engine with a black frame. Settings must already be valid.
// A nil clock uses real time.
func New(s Settings, driver Driver, store *forecast.Store, refresher Refresher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		settings:  s,
		driver:    driver,
		store:     store,
		refresher: refresher,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		frame:     domain.NewFrame(s.Width, s.Height),
		rows:      NewRowStates(s),
		targets:   make([]domain.Color, s.Height),
		leds:      make([]domain.Packed, s.Width*s.Height),
	}
}

// Frame exposes the frame buffer for inspection.
func (e *Engine) Frame() *domain.Frame { return e.frame }

// Rows returns a copy of the per-row animation state.
func (e *Engine) Rows() []RowState {
	return append([]RowState(nil), e.rows...)
}

// Tick is the number of frames composed so far.
func (e *Engine) Tick() uint64 { return e.tick }

// CheckReadiness returns nil once the first frame has reached the driver.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no frame rendered yet")
	}
	return nil
}

// Prime paints every row solid in its target color so the first frames fade
// from the forecast rather than from black.
func (e *Engine) Prime() {
	targetColors(e.settings, e.store.Load(), e.targets)
	for y, c := range e.targets {
		e.frame.FillRow(y, c)
	}
}

// Step composes one frame and returns it in transport order. The returned
// slice is reused by the next Step.
func (e *Engine) Step() []domain.Packed {
	f := e.store.Load()
	targetColors(e.settings, f, e.targets)

	Fade(e.frame, e.targets, e.settings)
	e.paintMarkers(f)
	e.paintBands(f)

	e.leds = e.frame.Flatten(e.settings.Order, e.leds)
	e.tick++
	return e.leds
}

func (e *Engine) paintMarkers(f domain.Forecast) {
	w := e.settings.Width
	for y := range e.rows {
		sample := f.Sample(y)
		r := &e.rows[y]

		x := MarkerCell(r.Position, w, BandWidth(sample.Precipitation))
		e.frame.SetColor(x, y, e.targets[y].Scale(e.settings.MarkerBoost))

		r.Advance(w, sample.Wind, e.settings.WindDivisor)
	}
}

func (e *Engine) paintBands(f domain.Forecast) {
	w := e.settings.Width
	p := e.settings.Palette
	for y := range e.rows {
		bw := BandWidth(f.Sample(y).Precipitation)
		if bw == 0 {
			continue
		}
		r := &e.rows[y]
		r.AdvancePhase(e.tick, len(p))

		c := p.At(r.Phase).Scale(e.settings.BandDim)
		for x := 0; x < bw && x < w; x++ {
			e.frame.SetColor(x, y, c)
			e.frame.SetColor(w-1-x, y, c)
		}
	}
}

// Run renders frames until ctx is cancelled, the driver fails, or a refresh
// error is returned under the fatal refresh policy. On exit it blanks the
// panel and shuts the driver down.
func (e *Engine) Run(ctx context.Context) (err error) {
	s := e.settings
	e.logger.Info("render loop started",
		"width", s.Width,
		"height", s.Height,
		"frame_rate", s.FrameRate,
		"refresh_ticks", s.RefreshTicks(),
		"order", s.Order.String(),
	)
	e.metrics.EngineRunning.Set(1)
	defer e.metrics.EngineRunning.Set(0)
	defer func() {
		if shutdownErr := e.shutdown(); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
	}()

	interval := s.FrameInterval()
	refreshEvery := s.RefreshTicks()

	for {
		if ctx.Err() != nil {
			e.logger.Info("render loop stopping", "reason", ctx.Err(), "ticks", e.tick)
			return nil
		}

		start := e.clock.Now()
		leds := e.Step()
		if err := e.driver.Render(leds); err != nil {
			e.metrics.DriverErrors.Inc()
			return fmt.Errorf("render frame %d: %w", e.tick, err)
		}
		e.metrics.FramesRendered.Inc()
		e.metrics.FrameDuration.Observe(e.clock.Since(start).Seconds())
		e.ready.Store(true)

		if !sleepWithContext(ctx, e.clock, interval) {
			continue
		}

		if e.tick%refreshEvery == 0 {
			if err := e.refresher.Refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// shutdown turns every pixel off and releases the driver.
func (e *Engine) shutdown() error {
	e.frame.Fill(domain.Black)
	blankErr := e.driver.Render(e.frame.Flatten(e.settings.Order, e.leds))
	if blankErr != nil {
		blankErr = fmt.Errorf("blank panel: %w", blankErr)
	}
	if err := e.driver.Shutdown(); err != nil {
		return errors.Join(blankErr, fmt.Errorf("shutdown driver: %w", err))
	}
	e.logger.Info("panel blanked and driver released")
	return blankErr
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
