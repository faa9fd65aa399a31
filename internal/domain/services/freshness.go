package services

import (
	"strconv"
	"strings"
	"time"
)

// Files kept next to the installed binaries
const (
	TimestampFile = ".timestamp"
	SourceFile    = ".installedFrom"
)

// ParseFreshnessMarker reads a marker holding epoch milliseconds.
// Unparsable content yields the zero epoch, which is always stale.
func ParseFreshnessMarker(content string) time.Time {
	millis, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64)
	if err != nil || millis < 0 {
		millis = 0
	}
	return time.UnixMilli(millis)
}

// FormatFreshnessMarker renders a marker for t
func FormatFreshnessMarker(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// IsFresh reports whether an installation marked at marker needs no update.
// A marker at or after now counts as fresh so clock skew never forces a reinstall.
func IsFresh(marker, now time.Time, updateIntervalHours int) bool {
	if marker.UnixMilli() <= 0 {
		return false
	}
	elapsed := now.Sub(marker)
	if elapsed <= 0 {
		return true
	}
	return elapsed < time.Duration(updateIntervalHours)*time.Hour
}
