package httpsource

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerContentType = "Content-Type"

func testClient(url string, records int) *Client {
	return NewClient(url, records, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func samples(n int) []domain.Sample {
	out := make([]domain.Sample, n)
	for i := range out {
		out[i] = domain.Sample{Temperature: 700 * i, Wind: 5 * i, Precipitation: 2 * i}
	}
	return out
}

func TestClient_Fetch_Binary(t *testing.T) {
	want := samples(14)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), contentTypeBinary)
		w.Header().Set(headerContentType, contentTypeBinary)
		w.Header().Set("Last-Modified", "Fri, 26 Apr 2024 15:00:00 GMT")
		_, _ = w.Write(domain.EncodeForecast(domain.Forecast{Samples: want}))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, 14).Fetch(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(want, got.Samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC).Equal(got.FetchedAt))
	assert.Equal(t, srv.URL, got.Source)
}

func TestClient_Fetch_JSON(t *testing.T) {
	fetched := time.Date(2024, time.April, 26, 16, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, "application/json; charset=utf-8")
		require.NoError(t, json.NewEncoder(w).Encode(document{FetchedAt: fetched, Samples: samples(3)}))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, 3).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, samples(3), got.Samples)
	assert.True(t, fetched.Equal(got.FetchedAt))
}

func TestClient_Fetch_WrongSize(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
	}{
		{name: "short binary", contentType: contentTypeBinary, body: domain.EncodeForecast(domain.Forecast{Samples: samples(13)})},
		{name: "long binary", contentType: contentTypeBinary, body: domain.EncodeForecast(domain.Forecast{Samples: samples(15)})},
		{name: "json sample count", contentType: contentTypeJSON, body: []byte(`{"samples":[{"temperature":1}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(headerContentType, tt.contentType)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL, 14).Fetch(context.Background())
			require.ErrorIs(t, err, domain.ErrForecastSize)
		})
	}
}

func TestClient_Fetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 14).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestClient_Fetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"samples":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 14).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Fetch_NotModifiedReplaysCache(t *testing.T) {
	var hits atomic.Int32
	body := domain.EncodeForecast(domain.Forecast{Samples: samples(4)})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 4)
	first, err := c.Fetch(context.Background())
	require.NoError(t, err)
	second, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, first, second)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 14, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast request")
}
