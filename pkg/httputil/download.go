package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/appstream-tools/compose/pkg/cache"
	"github.com/appstream-tools/compose/pkg/observability"
)

// ErrTooLarge is returned when a download exceeds the configured byte
// limit.
var ErrTooLarge = errors.New("download exceeds size limit")

const defaultUserAgent = "ascompose"

// DownloaderOptions configures a Downloader. Zero values select sensible
// defaults; a nil Cache disables caching.
type DownloaderOptions struct {
	Client    *http.Client
	Cache     cache.Cache
	Keyer     cache.Keyer
	MaxBytes  int64         // 0 means unlimited
	CacheTTL  time.Duration // 0 means entries never expire
	UserAgent string
}

// Downloader fetches remote media with a size limit, retry on transient
// failures and optional caching of the fetched bytes.
type Downloader struct {
	client    *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	maxBytes  int64
	cacheTTL  time.Duration
	userAgent string
}

// NewDownloader creates a Downloader.
func NewDownloader(opts DownloaderOptions) *Downloader {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 5 * time.Minute}
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Downloader{
		client:    opts.Client,
		cache:     opts.Cache,
		keyer:     opts.Keyer,
		maxBytes:  opts.MaxBytes,
		cacheTTL:  opts.CacheTTL,
		userAgent: opts.UserAgent,
	}
}

// MaxBytes returns the configured download size limit, 0 for unlimited.
func (d *Downloader) MaxBytes() int64 { return d.maxBytes }

// DownloadBytes fetches a URL into memory. Transient failures are retried
// with backoff; a download larger than the limit fails with [ErrTooLarge].
func (d *Downloader) DownloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	var cacheKey string
	if d.cache != nil {
		cacheKey = d.keyer.MediaKey(rawURL, cache.MediaKeyOpts{MaxBytes: d.maxBytes})
		if data, hit, err := d.cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "media")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "media")
	}

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = d.fetch(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, cacheKey, data, d.cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "media", len(data))
		}
	}
	return data, nil
}

// DownloadToFile fetches a URL and stores it at dest, creating parent
// directories as needed.
func (d *Downloader) DownloadToFile(ctx context.Context, rawURL, dest string) error {
	data, err := d.DownloadBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func (d *Downloader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)

	observability.HTTP().OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()

	resp, err := d.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// proceed
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RetryableError{Err: fmt.Errorf("server returned status %d for %s", resp.StatusCode, rawURL)}
	default:
		return nil, fmt.Errorf("server returned status %d for %s", resp.StatusCode, rawURL)
	}

	reader := resp.Body
	if d.maxBytes > 0 {
		reader = io.NopCloser(io.LimitReader(resp.Body, d.maxBytes+1))
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		return nil, &RetryableError{Err: err}
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, rawURL, d.maxBytes)
	}
	return data, nil
}
