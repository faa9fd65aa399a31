// Package entities defines core domain models and data structures.
package entities

// PlatformID identifies one of the execution platforms the scanner ships binaries for
type PlatformID string

// Supported platform identifiers
const (
	PlatformLinux       PlatformID = "LINUX"
	PlatformLinuxAlpine PlatformID = "LINUX_ALPINE"
	PlatformMacOS       PlatformID = "MACOS"
	PlatformWindows     PlatformID = "WINDOWS"
)

// PlatformProfile pairs a platform with the file names of the scanner and its
// report renderer for that platform
type PlatformProfile struct {
	ID            PlatformID
	ScannerBinary string
	ReportBinary  string
}

// IsWindows reports whether binaries for this platform need no executable bit
func (p PlatformProfile) IsWindows() bool {
	return p.ID == PlatformWindows
}

// Platforms is the closed set of known platform profiles
var Platforms = map[PlatformID]PlatformProfile{
	PlatformLinux: {
		ID:            PlatformLinux,
		ScannerBinary: "snyk-linux",
		ReportBinary:  "snyk-to-html-linux",
	},
	PlatformLinuxAlpine: {
		ID:            PlatformLinuxAlpine,
		ScannerBinary: "snyk-alpine",
		ReportBinary:  "snyk-to-html-alpine",
	},
	PlatformMacOS: {
		ID:            PlatformMacOS,
		ScannerBinary: "snyk-macos",
		ReportBinary:  "snyk-to-html-macos",
	},
	PlatformWindows: {
		ID:            PlatformWindows,
		ScannerBinary: "snyk-win.exe",
		ReportBinary:  "snyk-to-html-win.exe",
	},
}
