// Package httputil provides the HTTP download infrastructure used when
// fetching screenshot and video media.
//
// # Overview
//
//   - [Downloader]: size-limited media downloads with caching
//   - [Retry]: automatic retry with exponential backoff
//
// # Downloading
//
// [Downloader] fetches remote media, enforcing a byte limit and storing
// results in a cache so repeated compose runs do not re-fetch unchanged
// screenshots:
//
//	dl := httputil.NewDownloader(httputil.DownloaderOptions{
//	    Cache:    fileCache,
//	    MaxBytes: 10 << 20,
//	})
//	data, err := dl.DownloadBytes(ctx, url)
//
// # Retry
//
// [Retry] re-attempts transient failures:
//
//   - network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff, 3 attempts with 1 second base delay by
// default. Permanent failures (4xx) are returned immediately.
package httputil
