package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/domain"
)

// Settings parameterizes one physical display. Presets cover the panels the
// engine was tuned on; config overrides individual fields.
type Settings struct {
	Width, Height int
	FrameRate     int
	Palette       domain.Palette
	Order         domain.ChannelOrder

	// Forecast→color mapping.
	TempMin, TempMax float64
	HeaderRows       int
	TargetDim        float64

	// Fade factors: cells above their target are multiplied by DecayFactor
	// (EdgeDecayFactor on the outer columns); cells below gain
	// target*(1-RiseFactor) per tick.
	DecayFactor     float64
	EdgeDecayFactor float64
	RiseFactor      float64

	// Wind markers. A reflected marker moves at wind/WindDivisor cells per tick.
	WindDivisor     float64
	MarkerBoost     float64
	MarkerStart     []float64
	MarkerDirection []float64

	BandDim float64

	RefreshInterval time.Duration
	RefreshFatal    bool
}

// Starting marker layout of the classic panel; rows beyond the list cycle.
var (
	defaultMarkerStart     = []float64{15, 4, 11, 8, 0, 12, 6, 10, 2, 13, 3, 14, 5, 9, 7, 16}
	defaultMarkerDirection = []float64{1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, 1, -1, 1, -1, 1}
)

// Preset names.
const (
	PresetClassic = "classic"
	PresetWide    = "wide"
)

// Preset returns the settings for a named panel.
func Preset(name string) (Settings, error) {
	base := Settings{
		FrameRate:       30,
		Palette:         domain.DefaultPalette,
		Order:           domain.OrderRGB,
		HeaderRows:      3,
		TargetDim:       0.3,
		DecayFactor:     0.98,
		EdgeDecayFactor: 0.98,
		RiseFactor:      0.98,
		MarkerBoost:     2,
		MarkerStart:     defaultMarkerStart,
		MarkerDirection: defaultMarkerDirection,
		BandDim:         0.3,
		RefreshInterval: 5 * time.Minute,
	}

	switch name {
	case PresetClassic:
		base.Width, base.Height = 18, 14
		base.TempMin, base.TempMax = 0, 9999
		base.WindDivisor = 1500
	case PresetWide:
		base.Width, base.Height = 24, 12
		base.TempMin, base.TempMax = 3000, 9999
		base.WindDivisor = 400
		base.EdgeDecayFactor = 0.99
		base.Palette = domain.GradientPalette(domain.Color{R: 0x30, G: 0x30, B: 0xAA}, domain.Color{R: 0xAA, G: 0x39, B: 0x39}, 24)
	default:
		return Settings{}, fmt.Errorf("unknown preset %q", name)
	}
	return base, nil
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Width < 2 || s.Height < 1 {
		errs = append(errs, fmt.Errorf("matrix size %dx%d is too small", s.Width, s.Height))
	}
	if s.FrameRate <= 0 {
		errs = append(errs, errors.New("frame rate must be positive"))
	}
	if len(s.Palette) == 0 {
		errs = append(errs, errors.New("palette is empty"))
	}
	if s.TempMax <= s.TempMin {
		errs = append(errs, fmt.Errorf("temperature range [%v, %v] is empty", s.TempMin, s.TempMax))
	}
	if s.HeaderRows < 1 {
		errs = append(errs, errors.New("header rows must be at least 1"))
	}
	for name, f := range map[string]float64{
		"decay factor":      s.DecayFactor,
		"edge decay factor": s.EdgeDecayFactor,
		"rise factor":       s.RiseFactor,
	} {
		if f <= 0 || f >= 1 {
			errs = append(errs, fmt.Errorf("%s %v must be in (0, 1)", name, f))
		}
	}
	if s.WindDivisor <= 0 {
		errs = append(errs, errors.New("wind divisor must be positive"))
	}
	if len(s.MarkerStart) == 0 || len(s.MarkerDirection) == 0 {
		errs = append(errs, errors.New("marker start layout is empty"))
	}
	if s.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	return errors.Join(errs...)
}

// FrameInterval is the sleep between frames.
func (s Settings) FrameInterval() time.Duration {
	return time.Second / time.Duration(s.FrameRate)
}

// RefreshTicks is the number of frames between forecast refreshes, at least 1.
func (s Settings) RefreshTicks() uint64 {
	n := uint64(s.RefreshInterval / s.FrameInterval())
	if n == 0 {
		return 1
	}
	return n
}
