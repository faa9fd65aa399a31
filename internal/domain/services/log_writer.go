package services

import (
	"bytes"
	"strings"
	"sync"

	"github.com/ochairo/scangate/internal/domain/interfaces"
)

// LogWriter forwards child process output to a Logger one line at a time
type LogWriter struct {
	log     interfaces.Logger
	source  string
	mu      sync.Mutex
	pending []byte
}

// NewLogWriter creates a writer tagging every line with source
func NewLogWriter(log interfaces.Logger, source string) *LogWriter {
	return &LogWriter{log: log, source: source}
}

// Write logs each complete line and buffers the remainder
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Flush logs any trailing partial line
func (w *LogWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
}

func (w *LogWriter) emit(line []byte) {
	if s := strings.TrimRight(string(line), "\r"); strings.TrimSpace(s) != "" {
		w.log.Info(s, interfaces.F("source", w.source))
	}
}
