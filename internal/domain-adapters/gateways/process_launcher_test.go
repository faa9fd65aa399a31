package gateways

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ochairo/scangate/internal/domain/interfaces/gateways"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestProcessLauncher_Launch_Success(t *testing.T) {
	skipOnWindows(t)

	var stdout bytes.Buffer
	code, err := NewProcessLauncher().Launch(context.Background(), gateways.ProcessSpec{
		Args:   []string{"/bin/sh", "-c", `echo '{"ok": true}'`},
		Stdout: &stdout,
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if code != 0 {
		t.Errorf("Launch() exit code = %d, want 0", code)
	}
	if stdout.String() != "{\"ok\": true}\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestProcessLauncher_Launch_ExitCodes(t *testing.T) {
	skipOnWindows(t)

	for _, want := range []int{1, 2, 3, 42} {
		t.Run(strconv.Itoa(want), func(t *testing.T) {
			var stderr bytes.Buffer
			code, err := NewProcessLauncher().Launch(context.Background(), gateways.ProcessSpec{
				Args:   []string{"/bin/sh", "-c", "echo failed >&2; exit " + strconv.Itoa(want)},
				Stderr: &stderr,
			})
			if err != nil {
				t.Fatalf("Launch() error = %v, non-zero exit must not be an error", err)
			}
			if code != want {
				t.Errorf("Launch() exit code = %d, want %d", code, want)
			}
			if stderr.String() != "failed\n" {
				t.Errorf("stderr = %q", stderr.String())
			}
		})
	}
}

func TestProcessLauncher_Launch_EnvAndDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	_, err := NewProcessLauncher().Launch(context.Background(), gateways.ProcessSpec{
		Args: []string{"/bin/sh", "-c", `echo "$SNYK_INTEGRATION_NAME:$UNSET_IN_CHILD"; pwd`},
		Dir:  dir,
		Env: map[string]string{
			"SNYK_INTEGRATION_NAME": "SCANGATE",
		},
		Stdout: &stdout,
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if lines[0] != "SCANGATE:" {
		t.Errorf("env line = %q, want %q", lines[0], "SCANGATE:")
	}
	if !strings.HasSuffix(lines[1], "/"+filepath.Base(dir)) {
		t.Errorf("pwd = %q, want suffix %q", lines[1], dir)
	}
}

func TestProcessLauncher_Launch_MissingExecutable(t *testing.T) {
	code, err := NewProcessLauncher().Launch(context.Background(), gateways.ProcessSpec{
		Args: []string{"/nonexistent/snyk-linux", "test"},
	})
	if err == nil {
		t.Fatal("Launch() should fail for a missing executable")
	}
	if code != -1 {
		t.Errorf("Launch() exit code = %d, want -1", code)
	}

	if _, err := NewProcessLauncher().Launch(context.Background(), gateways.ProcessSpec{}); err == nil {
		t.Error("Launch() should fail without args")
	}
}

func TestProcessLauncher_Launch_Cancelled(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	code, err := NewProcessLauncher().Launch(ctx, gateways.ProcessSpec{
		Args: []string{"/bin/sh", "-c", "sleep 10"},
	})
	if err == nil {
		t.Fatal("Launch() should fail when the context expires")
	}
	if code != -1 {
		t.Errorf("Launch() exit code = %d, want -1", code)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("child process was not killed on cancellation")
	}
}

func TestEnvList_Sorted(t *testing.T) {
	got := envList(map[string]string{"B": "2", "A": "1", "C": "x=y"})
	want := []string{"A=1", "B=2", "C=x=y"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("envList() = %v, want %v", got, want)
	}
}
