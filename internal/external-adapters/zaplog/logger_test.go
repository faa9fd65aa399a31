package zaplog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ochairo/scangate/internal/domain/interfaces"
)

var _ interfaces.Logger = (*Logger)(nil)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("scan finished",
		interfaces.F("exitCode", 1),
		interfaces.F("installation", "snyk-latest"),
		interfaces.F("cause", errors.New("boom")),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "scan finished" || entry["level"] != "info" {
		t.Errorf("entry = %v", entry)
	}
	if entry["exitCode"] != float64(1) || entry["installation"] != "snyk-latest" || entry["cause"] != "boom" {
		t.Errorf("fields = %v", entry)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("monitor failed")
	log.Error("renderer failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("entries below warn were written:\n%s", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "monitor failed") || !strings.Contains(out, "renderer failed") {
		t.Errorf("console output = %s", out)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("New() should reject an unknown level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("New() should reject an unknown format")
	}
}
