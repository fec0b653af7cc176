// Command forecastgen writes forecast fixtures for the matrix: the binary
// file the file source reads, optionally a JSON twin for the HTTP source, and
// optionally a Kafka message on the forecast topic.
//
// Samples come from a CSV with temperature, wind and precipitation columns,
// or from a synthetic pattern that exercises every band width.
//
// Usage:
//
//	go run ./cmd/forecastgen -csv data/forecast.csv -out /home/pi/rpi_ws281x/forecast
//	go run ./cmd/forecastgen -synthetic 14 -out ./forecast -json ./forecast.json \
//	  -brokers localhost:9092 -topic weather-forecast
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-matrix/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/storm-matrix/internal/adapter/kafka"
	"github.com/couchcryptid/storm-matrix/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV with temperature,wind,precipitation columns")
	synthetic := flag.Int("synthetic", 0, "generate this many synthetic samples instead of reading a CSV")
	out := flag.String("out", "", "output path for the binary forecast file")
	jsonOut := flag.String("json", "", "optional output path for a JSON copy")
	brokers := flag.String("brokers", "", "comma-separated Kafka brokers to publish to")
	topic := flag.String("topic", "weather-forecast", "Kafka forecast topic")
	source := flag.String("source", "forecastgen", "source label stored with the forecast")
	fixedTime := flag.String("fixed-time", "", "RFC3339 fetch time for reproducible fixtures")
	flag.Parse()

	if (*csvPath == "") == (*synthetic == 0) {
		flag.Usage()
		return fmt.Errorf("exactly one of -csv or -synthetic is required")
	}
	if *out == "" && *jsonOut == "" && *brokers == "" {
		flag.Usage()
		return fmt.Errorf("nothing to do: set -out, -json or -brokers")
	}

	clock := clockwork.NewRealClock()
	if *fixedTime != "" {
		ts, err := time.Parse(time.RFC3339, *fixedTime)
		if err != nil {
			return fmt.Errorf("parse -fixed-time: %w", err)
		}
		clock = clockwork.NewFakeClockAt(ts)
	}

	var samples []domain.Sample
	if *csvPath != "" {
		var err error
		samples, err = readCSV(*csvPath)
		if err != nil {
			return fmt.Errorf("processing %s: %w", *csvPath, err)
		}
	} else {
		samples = syntheticSamples(*synthetic)
	}

	f := domain.Forecast{
		Samples:   samples,
		FetchedAt: clock.Now().UTC().Truncate(time.Second),
		Source:    *source,
	}
	log.Printf("forecast: %d samples", len(f.Samples))

	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
			return err
		}
		if err := file.WriteFile(*out, f); err != nil {
			return fmt.Errorf("writing forecast file: %w", err)
		}
		log.Printf("wrote forecast file: %s (%d bytes)", *out, domain.ForecastSize(len(f.Samples)))
	}

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, f); err != nil {
			return fmt.Errorf("writing JSON forecast: %w", err)
		}
		log.Printf("wrote JSON forecast: %s", *jsonOut)
	}

	if *brokers != "" {
		w := kafkaadapter.NewWriter(sharedcfg.ParseBrokers(*brokers), *topic, slog.Default())
		defer w.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := w.Publish(ctx, f); err != nil {
			return fmt.Errorf("publishing forecast: %w", err)
		}
	}

	printRows(f)
	return nil
}

func readCSV(path string) ([]domain.Sample, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"temperature", "wind", "precipitation"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	samples := make([]domain.Sample, 0, len(rows)-1)
	for n, row := range rows[1:] {
		var s domain.Sample
		for col, dst := range map[string]*int{
			"temperature":   &s.Temperature,
			"wind":          &s.Wind,
			"precipitation": &s.Precipitation,
		} {
			v, err := strconv.Atoi(strings.TrimSpace(row[colIdx[col]]))
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+2, col, err)
			}
			*dst = v
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// syntheticSamples sweeps temperature across the ramp, varies wind, and
// cycles precipitation through every band width.
func syntheticSamples(n int) []domain.Sample {
	precip := []int{0, 25, 75, 150}
	samples := make([]domain.Sample, n)
	for i := range samples {
		phase := 2 * math.Pi * float64(i) / float64(n)
		samples[i] = domain.Sample{
			Temperature:   int(5000 + 4500*math.Sin(phase)),
			Wind:          (40 + 37*i) % 200,
			Precipitation: precip[i%len(precip)],
		}
	}
	return samples
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printRows(f domain.Forecast) {
	fmt.Println()
	fmt.Println("=== Forecast ===")
	fmt.Printf("  %-6s %12s %6s %14s\n", "sample", "temperature", "wind", "precipitation")
	for i, s := range f.Samples {
		fmt.Printf("  %-6d %12d %6d %14d\n", i, s.Temperature, s.Wind, s.Precipitation)
	}
}
