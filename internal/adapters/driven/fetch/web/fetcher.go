// Package web fetches website sources over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.WebFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout      = domain.DefaultFetchTimeout
	DefaultMaxBytes     = domain.DefaultMaxFetchBytes
	DefaultUserAgent    = "sercha-rag/1.0 (+https://github.com/custodia-labs/sercha-rag)"
	defaultMaxRedirects = 10
)

// Metadata keys added to fetched documents.
const (
	MetaStatusCode = "status_code"
	MetaFinalURL   = "final_url"
)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds the whole request including the body (default: 30s).
	Timeout time.Duration

	// MaxBytes is the largest body accepted (default: 10 MiB).
	MaxBytes int64

	// UserAgent is sent with every request.
	UserAgent string
}

// Fetcher downloads a single URL. It never retries.
type Fetcher struct {
	client   *resty.Client
	maxBytes int64
	timeout  time.Duration
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,application/pdf;q=0.8,*/*;q=0.5").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(defaultMaxRedirects)).
		SetDoNotParseResponse(true)

	return &Fetcher{client: client, maxBytes: cfg.MaxBytes, timeout: cfg.Timeout}
}

// Fetch downloads url. Every failure wraps domain.ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.RawDocument, error) {
	done := logger.Timed("fetch " + url)
	defer done()

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, f.failed("fetch", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: fetch %s: HTTP %d", domain.ErrSourceUnavailable, url, resp.StatusCode())
	}
	if resp.RawResponse.ContentLength > f.maxBytes {
		return nil, f.tooLarge(url)
	}

	content, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return nil, f.failed("read", url, err)
	}
	if int64(len(content)) > f.maxBytes {
		return nil, f.tooLarge(url)
	}

	mimeType := resp.Header().Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = mimetype.Detect(content).String()
	}

	finalURL := url
	if req := resp.RawResponse.Request; req != nil && req.URL != nil {
		finalURL = req.URL.String()
	}
	logger.Debug("fetched %s: %d bytes (%s)", finalURL, len(content), mimeType)

	return &domain.RawDocument{
		URI:      url,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			MetaStatusCode: resp.StatusCode(),
			MetaFinalURL:   finalURL,
		},
	}, nil
}

func (f *Fetcher) tooLarge(url string) error {
	return fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrSourceUnavailable, url, f.maxBytes)
}

func (f *Fetcher) failed(op, url string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %s %s: timed out after %s: %w", domain.ErrSourceUnavailable, op, url, f.timeout, err)
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrSourceUnavailable, op, url, err)
}

// isTimeout reports whether err came from a request timing out.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
