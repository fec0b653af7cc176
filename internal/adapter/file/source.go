// Package file reads and writes the binary forecast file the fetcher cron job
// drops next to the display.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/storm-matrix/internal/domain"
)

// Source reads a fixed number of forecast records from a file.
// It implements forecast.Source.
type Source struct {
	path    string
	records int
}

// NewSource creates a file source expecting records samples at path.
func NewSource(path string, records int) *Source {
	return &Source{path: path, records: records}
}

// Fetch reads exactly the expected number of bytes. Trailing bytes are
// ignored; a short file is an error. The file's modification time becomes the
// forecast's FetchedAt.
func (s *Source) Fetch(ctx context.Context) (domain.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return domain.Forecast{}, err
	}
	if s.records <= 0 {
		return domain.Forecast{}, fmt.Errorf("invalid record count %d", s.records)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("open forecast: %w", err)
	}
	defer f.Close()

	buf := make([]byte, domain.ForecastSize(s.records))
	if _, err := io.ReadFull(f, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return domain.Forecast{}, fmt.Errorf("%w: %s is shorter than %d bytes", domain.ErrForecastSize, s.path, len(buf))
		}
		return domain.Forecast{}, fmt.Errorf("read forecast: %w", err)
	}

	fc, err := domain.DecodeForecast(buf, s.records)
	if err != nil {
		return domain.Forecast{}, err
	}
	if info, err := f.Stat(); err == nil {
		fc.FetchedAt = info.ModTime()
	}
	fc.Source = "file:" + s.path
	return fc, nil
}

// WriteFile encodes f and replaces path atomically, so a concurrent Fetch
// never sees a partial file.
func WriteFile(path string, f domain.Forecast) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod forecast: %w", err)
	}
	if _, err := tmp.Write(domain.EncodeForecast(f)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write forecast: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close forecast: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace forecast: %w", err)
	}
	return nil
}
