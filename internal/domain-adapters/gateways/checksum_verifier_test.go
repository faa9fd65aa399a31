package gateways

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCalculateChecksum(t *testing.T) {
	tests := []struct {
		name         string
		content      []byte
		wantChecksum string
	}{
		{
			name:         "empty file",
			content:      []byte(""),
			wantChecksum: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:         "simple content",
			content:      []byte("Hello, World!"),
			wantChecksum: "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snyk-linux")
			if err := os.WriteFile(path, tt.content, 0600); err != nil {
				t.Fatal(err)
			}

			got, err := NewChecksumVerifier().CalculateChecksum(path)
			if err != nil {
				t.Fatalf("CalculateChecksum() error = %v", err)
			}
			if got != tt.wantChecksum {
				t.Errorf("CalculateChecksum() = %v, want %v", got, tt.wantChecksum)
			}
		})
	}
}

func TestChecksumVerifier_Verify(t *testing.T) {
	const helloSum = "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cli/v1.0.0/snyk-linux.sha256":
			_, _ = w.Write([]byte(helloSum + "  snyk-linux\n"))
		case "/cli/v1.0.0/snyk-alpine.sha256":
			_, _ = w.Write([]byte(strings.ToUpper(helloSum)))
		case "/cli/v1.0.0/snyk-macos.sha256":
			_, _ = w.Write([]byte("0000000000000000000000000000000000000000000000000000000000000000"))
		case "/cli/v1.0.0/snyk-win.exe.sha256":
			_, _ = w.Write([]byte("not-a-digest"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "binary")
	if err := os.WriteFile(path, []byte("Hello, World!"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		binary  string
		wantErr string
	}{
		{"sha256sum format", "snyk-linux", ""},
		{"bare upper-case digest", "snyk-alpine", ""},
		{"mismatch", "snyk-macos", "checksum mismatch"},
		{"malformed digest", "snyk-win.exe", "malformed checksum"},
		{"missing digest", "snyk-unknown", "HTTP 404"},
	}

	v := NewChecksumVerifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), path, server.URL+"/cli/v1.0.0/"+tt.binary)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestChecksumVerifier_VerifyChecksum_MissingFile(t *testing.T) {
	err := NewChecksumVerifier().VerifyChecksum(context.Background(), "/nonexistent/snyk-linux", "abc")
	if err == nil {
		t.Error("VerifyChecksum() with non-existent file should return error")
	}
}
