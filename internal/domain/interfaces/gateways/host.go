// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
	"io"
)

// ProcessSpec describes one external process invocation
type ProcessSpec struct {
	Args   []string // Args[0] is the executable path
	Dir    string
	Env    map[string]string
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessLauncher runs external processes on the execution host.
// Launch blocks until the process exits or ctx is cancelled; a non-zero exit
// is reported through exitCode, not err.
type ProcessLauncher interface {
	Launch(ctx context.Context, spec ProcessSpec) (exitCode int, err error)
}

// CredentialStore resolves opaque credential references to secret values
type CredentialStore interface {
	Lookup(ctx context.Context, ref string) (string, error)
}

// ArtifactSink stores files produced by a run.
// Registering the same run/name pair twice is a no-op that returns false.
type ArtifactSink interface {
	Register(ctx context.Context, runID, name, path string) (registered bool, err error)
}

// HostInfo carries the execution host identification strings
type HostInfo struct {
	NodeName string
	OSName   string
	OSArch   string
}

// HostProbe inspects the execution host
type HostProbe interface {
	Probe(ctx context.Context) (HostInfo, error)
}
