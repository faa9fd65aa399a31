package gateways

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalArtifactSink_RegisterOnce(t *testing.T) {
	work := t.TempDir()
	report := filepath.Join(work, "run-42_snyk_report.html")
	if err := os.WriteFile(report, []byte("<html></html>"), 0600); err != nil {
		t.Fatal(err)
	}

	root := filepath.Join(t.TempDir(), "artifacts")
	sink := NewLocalArtifactSink(root)

	registered, err := sink.Register(context.Background(), "run-42", "run-42_snyk_report.html", report)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !registered {
		t.Error("first Register() should report registered = true")
	}

	data, err := os.ReadFile(filepath.Join(root, "run-42", "run-42_snyk_report.html"))
	if err != nil {
		t.Fatalf("archived artifact missing: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("archived content = %q", data)
	}

	registered, err = NewLocalArtifactSink(root).Register(context.Background(), "run-42", "run-42_snyk_report.html", report)
	if err != nil {
		t.Fatalf("second Register() error = %v", err)
	}
	if registered {
		t.Error("second Register() for the same run must be a no-op")
	}

	ledger, err := os.ReadFile(filepath.Join(root, "run-42", LedgerFile))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(ledger), "run-42_snyk_report.html"); n != 1 {
		t.Errorf("ledger entries = %d, want 1", n)
	}

	registered, err = sink.Register(context.Background(), "run-43", "run-42_snyk_report.html", report)
	if err != nil || !registered {
		t.Errorf("Register() for another run = %v, %v", registered, err)
	}
}

func TestLocalArtifactSink_Errors(t *testing.T) {
	sink := NewLocalArtifactSink(t.TempDir())

	tests := []struct {
		name  string
		runID string
		art   string
		path  string
	}{
		{"missing run id", "", "report.html", "/tmp/x"},
		{"nested name", "run", "../report.html", "/tmp/x"},
		{"missing source", "run", "report.html", "/nonexistent/report.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sink.Register(context.Background(), tt.runID, tt.art, tt.path); err == nil {
				t.Error("Register() should fail")
			}
		})
	}
}
