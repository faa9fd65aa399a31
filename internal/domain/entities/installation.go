package entities

import (
	"path/filepath"
	"time"
)

// InstallationRecord describes one configured scanner installation.
// Values are never rebound in place; specialization returns a copy.
type InstallationRecord struct {
	Name                string
	Version             string
	HomePath            string
	UpdateIntervalHours int
	PlatformOverride    string
	FreshnessMarker     time.Time

	// NodeHomes overrides HomePath per execution node name
	NodeHomes map[string]string

	// Verification settings for downloaded binaries (optional)
	VerifyChecksum bool
	GPGKeyFile     string
}

// ScannerPath returns the scanner binary location for a platform
func (r InstallationRecord) ScannerPath(p PlatformProfile) string {
	return filepath.Join(r.HomePath, p.ScannerBinary)
}

// ReportPath returns the report renderer binary location for a platform
func (r InstallationRecord) ReportPath(p PlatformProfile) string {
	return filepath.Join(r.HomePath, p.ReportBinary)
}
