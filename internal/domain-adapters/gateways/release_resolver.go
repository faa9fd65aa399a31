package gateways

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultScannerBase hosts the scanner CLI binaries
	DefaultScannerBase = "https://static.snyk.io/cli"
	// DefaultReportBase hosts the report renderer binaries
	DefaultReportBase = "https://static.snyk.io/snyk-to-html"

	// AliasLatest and AliasStable resolve server-side to a concrete release
	AliasLatest = "latest"
	AliasStable = "stable"

	// Max retries for transient errors
	maxRetries = 3
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second
)

var concreteVersion = regexp.MustCompile(`^[vV]?[0-9]+(\.[0-9]+)*([-+][0-9A-Za-z.-]+)?$`)

// HTTPReleaseResolver builds download URLs for the static release layout
// <base>/<version>/<binary> and resolves aliases through <base>/<alias>/version
type HTTPReleaseResolver struct {
	scannerBase    string
	reportBase     string
	client         *http.Client
	initialBackoff time.Duration
}

// NewReleaseResolver creates a resolver for the given download bases.
// Empty bases fall back to the public defaults.
func NewReleaseResolver(scannerBase, reportBase string) *HTTPReleaseResolver {
	if scannerBase == "" {
		scannerBase = DefaultScannerBase
	}
	if reportBase == "" {
		reportBase = DefaultReportBase
	}
	return &HTTPReleaseResolver{
		scannerBase: strings.TrimRight(scannerBase, "/"),
		reportBase:  strings.TrimRight(reportBase, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second, // Reasonable timeout for version checks
		},
		initialBackoff: initialBackoff,
	}
}

// NormalizeVersion lower-cases aliases and prefixes concrete versions with "v".
// Blank input means latest.
func NormalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	switch strings.ToLower(v) {
	case "", AliasLatest:
		return AliasLatest
	case AliasStable:
		return AliasStable
	}
	if concreteVersion.MatchString(v) {
		return "v" + strings.TrimLeft(v, "vV")
	}
	return v
}

// IsAlias reports whether version names a moving release channel
func IsAlias(version string) bool {
	n := NormalizeVersion(version)
	return n == AliasLatest || n == AliasStable
}

// ScannerURL returns the scanner download URL
func (r *HTTPReleaseResolver) ScannerURL(version, binary string) string {
	return fmt.Sprintf("%s/%s/%s", r.scannerBase, NormalizeVersion(version), binary)
}

// ReportURL returns the report renderer download URL
func (r *HTTPReleaseResolver) ReportURL(version, binary string) string {
	return fmt.Sprintf("%s/%s/%s", r.reportBase, NormalizeVersion(version), binary)
}

// ResolveAlias returns the concrete scanner version behind an alias.
// Concrete versions are returned normalized without a network call.
func (r *HTTPReleaseResolver) ResolveAlias(ctx context.Context, version string) (string, error) {
	normalized := NormalizeVersion(version)
	if !IsAlias(normalized) {
		return normalized, nil
	}

	url := fmt.Sprintf("%s/%s/version", r.scannerBase, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := r.doWithRetry(ctx, req)
	if err != nil {
		return "", fmt.Errorf("version request failed: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	resolved := NormalizeVersion(string(body))
	if !concreteVersion.MatchString(resolved) {
		return "", fmt.Errorf("unexpected version %q for alias %s", strings.TrimSpace(string(body)), normalized)
	}
	return resolved, nil
}

// doWithRetry executes an HTTP request with exponential backoff retry
func (r *HTTPReleaseResolver) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt - 1)):
			}
		}

		resp, err = r.client.Do(req)
		if err != nil {
			// Network errors are retryable
			if attempt < maxRetries && ctx.Err() == nil {
				continue
			}
			return nil, err
		}

		// Success or non-retryable error
		if !isRetryableError(resp.StatusCode) || attempt == maxRetries {
			return resp, nil
		}

		//nolint:errcheck,gosec // G104: Best effort close before retry
		resp.Body.Close()
	}

	return resp, err
}

func (r *HTTPReleaseResolver) backoff(attempt int) time.Duration {
	return calculateBackoff(r.initialBackoff, attempt)
}

// isRetryableError checks if an HTTP status code is retryable
func isRetryableError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// calculateBackoff returns the backoff duration for a retry attempt
func calculateBackoff(initial time.Duration, attempt int) time.Duration {
	backoff := float64(initial) * math.Pow(2, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}
