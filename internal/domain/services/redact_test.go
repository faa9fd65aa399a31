package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/ochairo/scangate/internal/domain/interfaces"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(msg string, fields []interfaces.Field) {
	var b strings.Builder
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		switch v := f.Value.(type) {
		case string:
			b.WriteString(v)
		case []string:
			b.WriteString(strings.Join(v, ","))
		}
	}
	r.lines = append(r.lines, b.String())
}

func (r *recordingLogger) Debug(msg string, fields ...interfaces.Field) { r.record(msg, fields) }
func (r *recordingLogger) Info(msg string, fields ...interfaces.Field)  { r.record(msg, fields) }
func (r *recordingLogger) Warn(msg string, fields ...interfaces.Field)  { r.record(msg, fields) }
func (r *recordingLogger) Error(msg string, fields ...interfaces.Field) { r.record(msg, fields) }

func TestRedactingLogger(t *testing.T) {
	rec := &recordingLogger{}
	log := NewRedactingLogger(rec, "tok-123", "")

	log.Info("running with tok-123", interfaces.F("cmd", "snyk --x=tok-123"))
	log.Warn("args", interfaces.F("args", []string{"a", "tok-123"}))
	log.Error("failed", interfaces.F("error", errors.New("bad token tok-123")))

	for _, line := range rec.lines {
		if strings.Contains(line, "tok-123") {
			t.Errorf("secret leaked: %s", line)
		}
	}
	if !strings.Contains(rec.lines[0], redactedValue) {
		t.Errorf("expected masked value, got %s", rec.lines[0])
	}
}
