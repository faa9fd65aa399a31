package yaml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ochairo/scangate/internal/domain/entities"
)

func TestLoadCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	content := "snyk-prod: tok-prod-123\nsnyk-empty: \"  \"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := LoadCredentialsFile(path)
	if err != nil {
		t.Fatalf("LoadCredentialsFile() error = %v", err)
	}

	got, err := store.Lookup(context.Background(), "snyk-prod")
	if err != nil || got != "tok-prod-123" {
		t.Errorf("Lookup(snyk-prod) = %q, %v", got, err)
	}

	for _, ref := range []string{"snyk-empty", "unknown"} {
		if _, err := store.Lookup(context.Background(), ref); !errors.Is(err, entities.ErrMissingCredential) {
			t.Errorf("Lookup(%s) error = %v, want ErrMissingCredential", ref, err)
		}
	}
}

func TestLoadCredentialsFile_RejectsOpenPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions only")
	}

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte("a: b\n"), 0600); err != nil {
		t.Fatal(err)
	}
	//nolint:gosec // G302: deliberately loose permissions under test
	if err := os.Chmod(path, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCredentialsFile(path); err == nil || !strings.Contains(err.Error(), "permissions") {
		t.Errorf("LoadCredentialsFile() error = %v, want permissions error", err)
	}
}

func TestParseCredentials_InvalidDoesNotEchoContent(t *testing.T) {
	_, err := ParseCredentials([]byte("- tok-secret-value\n- other"))
	if err == nil {
		t.Fatal("ParseCredentials() should reject a YAML list")
	}
	if strings.Contains(err.Error(), "tok-secret-value") {
		t.Errorf("error leaks file content: %v", err)
	}
}
