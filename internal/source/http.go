package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/JonMunkholm/stamps/internal/core"
)

// DefaultTimeout bounds a single fetch when Config.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// HTTPLoader fetches a CSV document with GET.
type HTTPLoader struct {
	url     string
	client  *http.Client
	maxSize int64
}

// NewHTTPLoader validates cfg and returns an HTTPLoader.
func NewHTTPLoader(cfg Config) (*HTTPLoader, error) {
	if cfg.URL == "" {
		return nil, errors.New("http source: url is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("http source: invalid url %q", cfg.URL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPLoader{
		url:     cfg.URL,
		client:  &http.Client{Timeout: timeout},
		maxSize: cfg.MaxSize,
	}, nil
}

// Name identifies the loader without leaking query strings.
func (l *HTTPLoader) Name() string {
	u, err := url.Parse(l.url)
	if err != nil {
		return "http"
	}
	return "http:" + u.Host + u.Path
}

// Load fetches and parses the document.
func (l *HTTPLoader) Load(ctx context.Context) (core.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", l.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", l.Name(), resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if l.maxSize > 0 {
		if resp.ContentLength > l.maxSize {
			return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, resp.ContentLength, l.maxSize)
		}
		body = &limitedReader{r: resp.Body, remaining: l.maxSize}
	}

	return ParseCSV(body)
}

// limitedReader is io.LimitReader that fails instead of truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// Read one more byte to distinguish "exactly at limit" from "over".
		var one [1]byte
		n, err := l.r.Read(one[:])
		if n > 0 {
			return 0, ErrSourceTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
