package services

import (
	"regexp"
	"strings"
)

var (
	snapshotURL = regexp.MustCompile(`(?i)explore this snapshot at\s+(https?://\S+)`)
	anyURL      = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// ExtractMonitorURL finds the project dashboard link in monitor output.
// The explicit "Explore this snapshot at" line wins; otherwise the last URL
// printed is used. Returns "" when the output holds no URL.
func ExtractMonitorURL(output string) string {
	if m := snapshotURL.FindStringSubmatch(output); m != nil {
		return trimURL(m[1])
	}
	all := anyURL.FindAllString(output, -1)
	if len(all) == 0 {
		return ""
	}
	return trimURL(all[len(all)-1])
}

func trimURL(u string) string {
	return strings.TrimRight(u, ".,;)")
}
