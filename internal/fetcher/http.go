// Package fetcher downloads experiment flux archives over HTTP ahead of
// analysis, politely: rate limited, retried with backoff, and skipping
// files already on disk.
package fetcher

import (
	"context"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the fetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
	Burst      int
}

// Fetcher downloads files sequentially with a shared rate limiter.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		opts:    opts,
	}
}

// Download fetches url into destPath. A file already present at destPath
// is left untouched; the archive servers version files by name, so
// presence means done. The download lands in a temp file and is renamed
// into place so a partial body never masquerades as a complete archive.
func (f *Fetcher) Download(ctx context.Context, url, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		zap.L().Debug("archive already present", zap.String("path", destPath))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return eris.Wrapf(err, "fetcher: create dir for %s", destPath)
	}

	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return eris.Wrap(ctx.Err(), "fetcher: cancelled")
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "fetcher: rate limit wait")
		}

		lastErr = f.fetchOnce(ctx, url, destPath)
		if lastErr == nil {
			zap.L().Info("downloaded archive", zap.String("url", url), zap.String("path", destPath))
			return nil
		}
		zap.L().Warn("download attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}
	return lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrapf(err, "fetcher: build request %s", url)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "fetcher: get %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("fetcher: get %s: status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return eris.Wrap(err, "fetcher: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "fetcher: write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "fetcher: close %s", tmp.Name())
	}

	return eris.Wrapf(os.Rename(tmp.Name(), destPath), "fetcher: rename into %s", destPath)
}
