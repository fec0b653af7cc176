package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/couchcryptid/storm-matrix/internal/domain"
)

const (
	contentTypeBinary = "application/octet-stream"
	contentTypeJSON   = "application/json"
)

// Client implements forecast.Source against an HTTP endpoint serving either
// the binary record layout or a JSON document.
type Client struct {
	url        string
	records    int
	httpClient *http.Client
	logger     *slog.Logger

	// Last good response, replayed on 304 Not Modified.
	mu     sync.Mutex
	etag   string
	cached domain.Forecast
}

// NewClient creates a forecast client for url expecting records samples.
func NewClient(url string, records int, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:     url,
		records: records,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads the forecast. A JSON body must carry exactly the expected
// number of samples, same as the binary layout.
func (c *Client) Fetch(ctx context.Context) (domain.Forecast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeBinary+", "+contentTypeJSON)

	c.mu.Lock()
	etag := c.etag
	c.mu.Unlock()
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && etag != "":
		c.logger.Debug("forecast not modified", "etag", etag)
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.cached, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Forecast{}, fmt.Errorf("forecast endpoint error: status %d: %s", resp.StatusCode, body)
	}

	f, err := c.decode(resp)
	if err != nil {
		return domain.Forecast{}, err
	}
	if f.FetchedAt.IsZero() {
		if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
			f.FetchedAt = lm
		}
	}
	f.Source = c.url

	if tag := resp.Header.Get("ETag"); tag != "" {
		c.mu.Lock()
		c.etag, c.cached = tag, f
		c.mu.Unlock()
	}
	return f, nil
}

func (c *Client) decode(resp *http.Response) (domain.Forecast, error) {
	size := domain.ForecastSize(c.records)
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	if mediaType == contentTypeJSON {
		var doc document
		if err := json.NewDecoder(io.LimitReader(resp.Body, int64(size)*64)).Decode(&doc); err != nil {
			return domain.Forecast{}, fmt.Errorf("decode response: %w", err)
		}
		if len(doc.Samples) != c.records {
			return domain.Forecast{}, fmt.Errorf("decode response: %w: got %d samples, want %d", domain.ErrForecastSize, len(doc.Samples), c.records)
		}
		return domain.Forecast{Samples: doc.Samples, FetchedAt: doc.FetchedAt}, nil
	}

	// Anything else is treated as the raw record layout. Read one extra byte
	// so an oversized body is rejected rather than truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(size)+1))
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("read response: %w", err)
	}
	return domain.DecodeForecast(data, c.records)
}

// document is the JSON form of a forecast.
type document struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Samples   []domain.Sample `json:"samples"`
}
