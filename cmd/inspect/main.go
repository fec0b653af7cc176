// Command inspect decodes a forecast file, checks it against a panel preset,
// and prints how each row will be drawn: the sample it reads, the ramp bucket
// and target color, the wind marker speed, and the precipitation band width.
//
// Usage:
//
//	go run ./cmd/inspect -forecast /home/pi/rpi_ws281x/forecast
//	go run ./cmd/inspect -forecast ./forecast -preset wide -records 12
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/storm-matrix/internal/adapter/file"
	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/couchcryptid/storm-matrix/internal/engine"
)

// Values the upstream fetcher never produces; anything outside is suspect.
const (
	maxWind          = 200
	maxPrecipitation = 200
)

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("forecast", "", "path to the binary forecast file")
	preset := flag.String("preset", engine.PresetClassic, "panel preset (classic, wide)")
	records := flag.Int("records", 0, "records in the file (default: preset height)")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*path, *preset, *records); code != 0 {
		os.Exit(code)
	}
}

func run(path, preset string, records int) int {
	s, err := engine.Preset(preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	if records <= 0 {
		records = s.Height
	}

	f, err := file.NewSource(path, records).Fetch(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load forecast: %v\n", err)
		return 1
	}

	fmt.Println("=== Storm Matrix Forecast Inspection ===")
	fmt.Println()
	fmt.Printf("File:    %s (modified %s)\n", path, f.FetchedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Panel:   %s %dx%d, %d palette entries, ramp [%v, %v]\n",
		preset, s.Width, s.Height, len(s.Palette), s.TempMin, s.TempMax)
	fmt.Println()

	printRows(s, f)

	phases := []*phase{
		checkCoverage(s, f),
		checkRanges(s, f),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-30s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  %d. %s\n", i+1, e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("\033[31mINSPECTION FAILED\033[0m")
		return 1
	}
	fmt.Println("\033[32mALL CHECKS PASSED\033[0m")
	return 0
}

func printRows(s engine.Settings, f domain.Forecast) {
	fmt.Printf("  %-4s %-6s %8s %6s %-8s %6s %6s %4s\n",
		"row", "sample", "temp", "bucket", "target", "wind", "speed", "band")
	for y := 0; y < s.Height; y++ {
		idx := engine.SampleIndex(y, s.HeaderRows)
		sample := f.Sample(idx)
		temp := max(sample.Temperature, 0)
		bucket := domain.RampIndex(float64(temp), s.TempMin, s.TempMax, len(s.Palette))
		fmt.Printf("  %-4d %-6d %8d %6d %-8s %6d %6.3f %4d\n",
			y, idx, sample.Temperature, bucket,
			engine.TargetColor(s, f, y).Hex(),
			sample.Wind, float64(sample.Wind)/s.WindDivisor,
			engine.BandWidth(sample.Precipitation))
	}
}

// checkCoverage reports rows that fall back to the last sample because the
// file is shorter than the panel needs.
func checkCoverage(s engine.Settings, f domain.Forecast) *phase {
	p := &phase{name: "Row coverage"}
	needed := engine.SampleIndex(s.Height-1, s.HeaderRows) + 1
	if len(f.Samples) < needed {
		p.errorf("panel reads samples 0..%d but the forecast has %d; rows beyond reuse the last sample",
			needed-1, len(f.Samples))
	}
	return p
}

func checkRanges(s engine.Settings, f domain.Forecast) *phase {
	p := &phase{name: "Value ranges"}
	for i, sample := range f.Samples {
		if float64(sample.Temperature) > s.TempMax || float64(sample.Temperature) < s.TempMin {
			p.errorf("sample %d: temperature %d outside ramp [%v, %v], clamped", i, sample.Temperature, s.TempMin, s.TempMax)
		}
		if sample.Wind < 0 || sample.Wind > maxWind {
			p.errorf("sample %d: wind %d outside [0, %d]", i, sample.Wind, maxWind)
		}
		if sample.Precipitation < 0 || sample.Precipitation > maxPrecipitation {
			p.errorf("sample %d: precipitation %d outside [0, %d]", i, sample.Precipitation, maxPrecipitation)
		}
	}
	return p
}
