package gateways

import "context"

// ToolDownloader fetches a single file over HTTP(S)
type ToolDownloader interface {
	DownloadFile(ctx context.Context, url, dest string) (int64, error)
}

// ReleaseResolver maps a requested version or alias to download URLs
type ReleaseResolver interface {
	// ScannerURL returns the scanner download URL for a version and binary name
	ScannerURL(version, binary string) string

	// ReportURL returns the report renderer download URL for a version and binary name
	ReportURL(version, binary string) string

	// ResolveAlias returns the concrete version behind "latest"/"stable".
	// Concrete versions are returned normalized.
	ResolveAlias(ctx context.Context, version string) (string, error)
}

// BinaryVerifier checks a downloaded binary against published metadata
type BinaryVerifier interface {
	Verify(ctx context.Context, filePath, sourceURL string) error
}
