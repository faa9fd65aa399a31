package services

import (
	"github.com/ochairo/scangate/internal/domain/interfaces"
)

// RedactingLogger masks secret values in messages and string fields before
// handing them to the wrapped logger
type RedactingLogger struct {
	next    interfaces.Logger
	secrets []string
}

// NewRedactingLogger wraps next; empty secrets are ignored
func NewRedactingLogger(next interfaces.Logger, secrets ...string) *RedactingLogger {
	l := &RedactingLogger{next: next}
	l.AddSecret(secrets...)
	return l
}

// AddSecret registers more values to mask
func (l *RedactingLogger) AddSecret(secrets ...string) {
	for _, s := range secrets {
		if s != "" {
			l.secrets = append(l.secrets, s)
		}
	}
}

// Debug logs debug-level messages
func (l *RedactingLogger) Debug(msg string, fields ...interfaces.Field) {
	l.next.Debug(l.clean(msg), l.cleanFields(fields)...)
}

// Info logs informational messages
func (l *RedactingLogger) Info(msg string, fields ...interfaces.Field) {
	l.next.Info(l.clean(msg), l.cleanFields(fields)...)
}

// Warn logs warning messages
func (l *RedactingLogger) Warn(msg string, fields ...interfaces.Field) {
	l.next.Warn(l.clean(msg), l.cleanFields(fields)...)
}

// Error logs error messages
func (l *RedactingLogger) Error(msg string, fields ...interfaces.Field) {
	l.next.Error(l.clean(msg), l.cleanFields(fields)...)
}

func (l *RedactingLogger) clean(s string) string {
	return RedactSecrets(s, l.secrets...)
}

func (l *RedactingLogger) cleanFields(fields []interfaces.Field) []interfaces.Field {
	if len(l.secrets) == 0 {
		return fields
	}
	out := make([]interfaces.Field, len(fields))
	for i, f := range fields {
		switch v := f.Value.(type) {
		case string:
			f.Value = l.clean(v)
		case []string:
			masked := make([]string, len(v))
			for j := range v {
				masked[j] = l.clean(v[j])
			}
			f.Value = masked
		case error:
			f.Value = l.clean(v.Error())
		}
		out[i] = f
	}
	return out
}
