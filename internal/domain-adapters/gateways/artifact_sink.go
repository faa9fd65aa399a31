package gateways

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LedgerFile lists the artifact names already registered for a run
const LedgerFile = ".registered"

// LocalArtifactSink archives run artifacts under <root>/<runID>/<name>
type LocalArtifactSink struct {
	root string
	mu   sync.Mutex
}

// NewLocalArtifactSink creates a sink rooted at dir
func NewLocalArtifactSink(dir string) *LocalArtifactSink {
	return &LocalArtifactSink{root: dir}
}

// Register copies path into the run's archive unless name was registered before
func (s *LocalArtifactSink) Register(_ context.Context, runID, name, path string) (bool, error) {
	if runID == "" || name == "" {
		return false, fmt.Errorf("run id and artifact name are required")
	}
	if filepath.Base(name) != name {
		return false, fmt.Errorf("invalid artifact name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runDir := filepath.Join(s.root, filepath.Base(runID))
	ledger := filepath.Join(runDir, LedgerFile)

	seen, err := readLedger(ledger)
	if err != nil {
		return false, err
	}
	if seen[name] {
		return false, nil
	}

	if err := os.MkdirAll(runDir, 0750); err != nil {
		return false, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := copyFile(path, filepath.Join(runDir, name)); err != nil {
		return false, err
	}

	//nolint:gosec // G304: ledger lives inside the configured artifact directory
	f, err := os.OpenFile(ledger, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return false, fmt.Errorf("failed to open artifact ledger: %w", err)
	}
	if _, err := fmt.Fprintln(f, name); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("failed to update artifact ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close artifact ledger: %w", err)
	}

	return true, nil
}

func readLedger(path string) (map[string]bool, error) {
	seen := make(map[string]bool)

	//nolint:gosec // G304: ledger lives inside the configured artifact directory
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return seen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact ledger: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			seen[line] = true
		}
	}
	return seen, sc.Err()
}

func copyFile(src, dst string) error {
	//nolint:gosec // G304: src is the report produced by this run
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	//nolint:gosec // G304: dst is inside the configured artifact directory
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create artifact copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy artifact: %w", err)
	}
	return out.Close()
}
