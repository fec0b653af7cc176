package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/adapter/file"
	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForecast(n int) domain.Forecast {
	samples := make([]domain.Sample, n)
	for i := range samples {
		samples[i] = domain.Sample{Temperature: 500 * i, Wind: 10 * i, Precipitation: i}
	}
	return domain.Forecast{Samples: samples}
}

func TestSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast")
	want := sampleForecast(14)
	require.NoError(t, file.WriteFile(path, want))

	mtime := time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	got, err := file.NewSource(path, 14).Fetch(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(want.Samples, got.Samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, mtime.Equal(got.FetchedAt))
	assert.Equal(t, "file:"+path, got.Source)
}

func TestSource_IgnoresTrailingBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast")
	data := append(domain.EncodeForecast(sampleForecast(3)), 0xde, 0xad)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := file.NewSource(path, 3).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Samples, 3)
}

func TestSource_ShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast")
	require.NoError(t, os.WriteFile(path, domain.EncodeForecast(sampleForecast(13)), 0o644))

	_, err := file.NewSource(path, 14).Fetch(context.Background())
	require.ErrorIs(t, err, domain.ErrForecastSize)
}

func TestSource_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := file.NewSource(path, 14).Fetch(context.Background())
	require.ErrorIs(t, err, domain.ErrForecastSize)
}

func TestSource_MissingFile(t *testing.T) {
	_, err := file.NewSource(filepath.Join(t.TempDir(), "nope"), 14).Fetch(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := file.NewSource("/does/not/matter", 14).Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forecast")
	require.NoError(t, file.WriteFile(path, sampleForecast(14)))
	require.NoError(t, file.WriteFile(path, sampleForecast(2)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, domain.ForecastSize(2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
