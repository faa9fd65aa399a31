package services

import (
	"testing"
)

func TestLogWriter(t *testing.T) {
	rec := &recordingLogger{}
	w := NewLogWriter(NewRedactingLogger(rec, "tok-123"), "scanner")

	_, _ = w.Write([]byte("Testing /work...\r\nauth tok-123 ok\n\n  \npartial"))
	if len(rec.lines) != 2 {
		t.Fatalf("lines before flush = %v", rec.lines)
	}
	_, _ = w.Write([]byte(" line"))
	w.Flush()
	w.Flush()

	want := []string{
		"Testing /work... source=scanner",
		"auth ******** ok source=scanner",
		"partial line source=scanner",
	}
	if len(rec.lines) != len(want) {
		t.Fatalf("lines = %v, want %v", rec.lines, want)
	}
	for i := range want {
		if rec.lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, rec.lines[i], want[i])
		}
	}
}
