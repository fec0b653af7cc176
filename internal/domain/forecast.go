package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// recordSize is the width of one forecast record: three big-endian int32s.
const recordSize = 3 * 4

// ErrForecastSize is returned when a forecast payload is not exactly the
// expected number of records.
var ErrForecastSize = errors.New("forecast payload has wrong size")

// Sample is one forecast reading. Temperature is expected roughly in
// [0, 10000]; wind and precipitation in [0, 200].
type Sample struct {
	Temperature   int `json:"temperature"`
	Wind          int `json:"wind"`
	Precipitation int `json:"precipitation"`
}

// Forecast is a complete set of samples. It is replaced wholesale on every
// refresh and treated as read-only afterwards.
type Forecast struct {
	Samples   []Sample  `json:"samples"`
	FetchedAt time.Time `json:"fetched_at"`
	Source    string    `json:"source,omitempty"`
}

// Sample returns the sample at i, clamped into range so shorter forecasts
// broadcast their last reading. An empty forecast yields the zero sample.
func (f Forecast) Sample(i int) Sample {
	if len(f.Samples) == 0 {
		return Sample{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(f.Samples) {
		i = len(f.Samples) - 1
	}
	return f.Samples[i]
}

// ForecastSize returns the byte length of a payload holding records samples.
func ForecastSize(records int) int {
	return records * recordSize
}

// DecodeForecast parses exactly records contiguous (temperature, wind,
// precipitation) big-endian int32 triples.
func DecodeForecast(data []byte, records int) (Forecast, error) {
	if records <= 0 {
		return Forecast{}, fmt.Errorf("decode forecast: invalid record count %d", records)
	}
	if len(data) != ForecastSize(records) {
		return Forecast{}, fmt.Errorf("decode forecast: %w: got %d bytes, want %d", ErrForecastSize, len(data), ForecastSize(records))
	}

	samples := make([]Sample, records)
	for i := range samples {
		rec := data[i*recordSize : (i+1)*recordSize]
		samples[i] = Sample{
			Temperature:   int(int32(binary.BigEndian.Uint32(rec[0:4]))),
			Wind:          int(int32(binary.BigEndian.Uint32(rec[4:8]))),
			Precipitation: int(int32(binary.BigEndian.Uint32(rec[8:12]))),
		}
	}
	return Forecast{Samples: samples}, nil
}

// EncodeForecast writes f in the layout DecodeForecast reads. Values outside
// the int32 range are truncated to their low 32 bits.
func EncodeForecast(f Forecast) []byte {
	out := make([]byte, ForecastSize(len(f.Samples)))
	for i, s := range f.Samples {
		rec := out[i*recordSize : (i+1)*recordSize]
		binary.BigEndian.PutUint32(rec[0:4], uint32(int32(s.Temperature)))
		binary.BigEndian.PutUint32(rec[4:8], uint32(int32(s.Wind)))
		binary.BigEndian.PutUint32(rec[8:12], uint32(int32(s.Precipitation)))
	}
	return out
}
