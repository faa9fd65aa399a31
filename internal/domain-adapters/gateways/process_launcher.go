package gateways

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"

	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
)

// ProcessLauncher runs scanner and renderer binaries on the local host
type ProcessLauncher struct{}

// NewProcessLauncher creates a new local process launcher
func NewProcessLauncher() *ProcessLauncher {
	return &ProcessLauncher{}
}

// Launch runs spec.Args[0] with the remaining args and blocks until it exits.
// A nil spec.Env inherits the current environment; otherwise it is the complete
// child environment. Cancelling ctx kills the child.
func (l *ProcessLauncher) Launch(ctx context.Context, spec gateways.ProcessSpec) (int, error) {
	if len(spec.Args) == 0 {
		return -1, fmt.Errorf("no executable given")
	}

	//nolint:gosec // G204: Executing the provisioned scanner binary is the purpose of this launcher
	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = envList(spec.Env)
	}
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("process interrupted: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was terminated by a signal
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		return -1, fmt.Errorf("process terminated: %w", err)
	}

	return -1, fmt.Errorf("failed to start %s: %w", spec.Args[0], err)
}

// envList renders an environment map in a stable KEY=VALUE order
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}
