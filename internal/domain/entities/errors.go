package entities

import (
	"errors"
	"fmt"
)

// Configuration failures detected before any external process runs
var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrMissingInstallation = errors.New("installation not configured")
	ErrMissingCredential   = errors.New("credential not available")
	ErrMissingBinary       = errors.New("scanner binary not found")
	ErrNoExecutionHost     = errors.New("no execution host available")
)

// Scanner output decoding failures
var (
	// ErrMalformedEncoding means the output bytes are not valid UTF-8
	ErrMalformedEncoding = errors.New("scanner output is not valid UTF-8")

	// ErrMalformedResult means the output is not a result object or array
	ErrMalformedResult = errors.New("scanner output is not a valid result document")
)

// ConfigurationError aborts a run before any external process is spawned
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProvisioningError reports a failed tool download or install
type ProvisioningError struct {
	Installation string
	Err          error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %q failed: %v", e.Installation, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// ExecutionError means the scan itself could not complete
type ExecutionError struct {
	Phase    string
	ExitCode int
	Detail   string
	Err      error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Phase, e.ExitCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IssuesFoundError signals that the scan succeeded and found vulnerabilities.
// It is a policy outcome, raised only when the step fails on issues.
type IssuesFoundError struct {
	ExitCode int
	Result   *ScanResult
}

func (e *IssuesFoundError) Error() string {
	if e.Result == nil {
		return fmt.Sprintf("vulnerabilities found (exit %d)", e.ExitCode)
	}
	return fmt.Sprintf("%d unique vulnerabilities found across %d dependencies (exit %d)",
		e.Result.UniqueCount, e.Result.DependencyCount, e.ExitCode)
}
