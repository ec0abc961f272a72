// Package artifact downloads and verifies release binaries: HTTP transfer
// with retry, sha256 digest checks against registry-published checksums, and
// optional detached-signature verification against a local keyring.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultTimeout is the HTTP request timeout for artifact transfers.
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the number of download retries after the first
	// attempt.
	DefaultRetries = 3
	// DefaultUserAgent is sent with every download request.
	DefaultUserAgent = "tvm"
)

// Downloader transfers artifacts over HTTP with retry and exponential
// backoff. It writes plain files; atomicity is the caller's staging
// directory's job.
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
}

// NewDownloader creates a downloader with production defaults.
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
	}
}

// DownloadToFile downloads a URL to destPath, retrying transient failures
// with exponential backoff (1s, 2s, 4s).
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			log.Debug("retrying download", "url", url, "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("download %s: %w", url, lastErr)
}

func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	log.Debug("downloading", "url", url, "dest", destPath)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("write file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}
