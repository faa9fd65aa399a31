package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// UserAgent is sent with every download request
const UserAgent = "scangate/1.0"

// Downloader fetches tool binaries over HTTP(S)
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a new downloader
func NewDownloader() *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // scanner binaries are large
		},
	}
}

// NewDownloaderWithClient creates a downloader using the given HTTP client
func NewDownloaderWithClient(client *http.Client) *Downloader {
	return &Downloader{httpClient: client}
}

// DownloadFile streams url into dest, atomically replacing any existing file
// and keeping its permissions, and returns the bytes written
func (d *Downloader) DownloadFile(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Write beside dest and rename over it so a running binary is never
	// truncated and readers see either the old or the new file.
	out, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	tmp := out.Name()
	//nolint:errcheck // Defer cleanup, the temp file is gone after a successful rename
	defer os.Remove(tmp)

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = out.Close()
		return written, fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	if info, statErr := os.Stat(dest); statErr == nil {
		if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
			return written, fmt.Errorf("failed to set file mode: %w", err)
		}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return written, fmt.Errorf("failed to replace %s: %w", filepath.Base(dest), err)
	}

	return written, nil
}
